package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/booknest/internal/client/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProfile(w io.Writer, p models.UserProfile) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", p.FullName())
	fmt.Fprintf(tw, "Email:\t%s\n", p.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", p.Role)
	if p.Phone != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", p.Phone)
	}
	if p.Address != "" {
		fmt.Fprintf(tw, "Address:\t%s\n", p.Address)
	}
	if p.DOB != "" {
		fmt.Fprintf(tw, "Born:\t%s\n", p.DOB)
	}
	_ = tw.Flush()
}

func printBooks(w io.Writer, books []models.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPRICE")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, formatPrice(b.Price))
	}
	_ = tw.Flush()
}

func printBook(w io.Writer, b models.Book) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", b.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", b.Title)
	fmt.Fprintf(tw, "Author:\t%s\n", b.Author)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(b.Price))
	if b.Category != nil {
		fmt.Fprintf(tw, "Category:\t%s\n", b.Category.Name)
	}
	fmt.Fprintf(tw, "Available:\t%t\n", b.Available)
	if b.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", b.Description)
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, c models.Cart) {
	if len(c.Books) == 0 && len(c.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "BOOK\tTITLE\tQTY\tPRICE")
	var total float64
	for _, b := range c.Books {
		fmt.Fprintf(tw, "%d\t%s\t1\t%s\n", b.ID, b.Title, formatPrice(b.Price))
		total += b.Price
	}
	for _, it := range c.Items {
		qty := max(it.Quantity, 1)
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.BookID, it.Title, qty, formatPrice(it.Price))
		total += it.Price * float64(qty)
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%s\n", formatPrice(total))
	_ = tw.Flush()
}

func printOrders(w io.Writer, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.ID, o.OrderDate, o.Status, formatPrice(o.TotalAmount))
	}
	_ = tw.Flush()
}

func printOrder(w io.Writer, o models.Order) {
	printOrders(w, []models.Order{o})
	if o.ShippingAddress != "" {
		fmt.Fprintf(w, "Ship to: %s\n", o.ShippingAddress)
	}
	if len(o.Books) > 0 {
		printBooks(w, o.Books)
	}
}

func printReviews(w io.Writer, reviews []models.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(w, "No reviews yet")
		return
	}
	for _, r := range reviews {
		fmt.Fprintf(w, "%d/5 %s\n", r.Rating, r.Comment)
	}
}

func printCategories(w io.Writer, cats []models.Category) {
	tw := newTable(w)
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	_ = tw.Flush()
}

func formatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', 2, 64)
}
