package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/booknest/internal/client/models"
)

// parseID reads the positional argument at i as a numeric id.
func parseID(args []string, i int, what string) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("usage: missing %s id", what)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, args[i])
	}
	return id, nil
}

// parseQuery turns "key=value" arguments into a query. A bare word is
// taken as a title search.
func parseQuery(args []string) url.Values {
	q := url.Values{}
	for _, arg := range args {
		if k, v, ok := strings.Cut(arg, "="); ok {
			q.Add(k, v)
			continue
		}
		q.Add("title", arg)
	}
	return q
}

// Books lists the catalogue, optionally filtered.
func (a *App) Books(ctx context.Context, args []string) error {
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	books, err := a.api.ListBooks(ctx, parseQuery(args))
	if err != nil {
		return err
	}
	printBooks(a.out, books)
	return nil
}

func (a *App) Book(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "book")
	if err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	b, err := a.api.GetBook(ctx, id)
	if err != nil {
		return err
	}
	printBook(a.out, b)
	return nil
}

func (a *App) Categories(ctx context.Context) error {
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	cats, err := a.api.ListCategories(ctx)
	if err != nil {
		return err
	}
	printCategories(a.out, cats)
	return nil
}

func (a *App) Reviews(ctx context.Context, args []string) error {
	id, err := parseID(args, 0, "book")
	if err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	reviews, err := a.api.ListReviews(ctx, id)
	if err != nil {
		return err
	}
	printReviews(a.out, reviews)
	return nil
}

// Review posts a rating and comment for a book.
func (a *App) Review(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseID(args, 0, "book")
	if err != nil {
		return err
	}

	ratingText, err := getSimpleText(a.reader, "Rating (1-5)", a.out)
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(ratingText)
	if err != nil || rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be a number from 1 to 5")
	}
	comment, err := getMultiline(a.reader, "Comment", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	if _, err := a.api.CreateReview(ctx, id, models.ReviewInput{Rating: rating, Comment: comment}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Thanks for your review!")
	return nil
}

// AddBook creates a catalogue entry. Admins only.
func (a *App) AddBook(ctx context.Context) error {
	if !a.isAdmin() {
		return fmt.Errorf("only administrators can add books")
	}

	var in models.BookInput
	var err error
	if in.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.Author, err = getSimpleText(a.reader, "Author", a.out); err != nil {
		return err
	}
	priceText, err := getSimpleText(a.reader, "Price", a.out)
	if err != nil {
		return err
	}
	if in.Price, err = strconv.ParseFloat(priceText, 64); err != nil || in.Price < 0 {
		return fmt.Errorf("invalid price %q", priceText)
	}
	categoryText, err := getSimpleText(a.reader, "Category id (optional)", a.out)
	if err != nil {
		return err
	}
	if categoryText != "" {
		if in.CategoryID, err = strconv.ParseInt(categoryText, 10, 64); err != nil {
			return fmt.Errorf("invalid category id %q", categoryText)
		}
	}
	if in.Description, err = getMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	in.Available = true

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	b, err := a.api.CreateBook(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created book %d\n", b.ID)
	return nil
}

func (a *App) DeleteBook(ctx context.Context, args []string) error {
	if !a.isAdmin() {
		return fmt.Errorf("only administrators can delete books")
	}
	id, err := parseID(args, 0, "book")
	if err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	if err := a.api.DeleteBook(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted book %d\n", id)
	return nil
}

// Upload sends a local file: upload <path> [image|document].
func (a *App) Upload(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: upload <path> [image|document]")
	}
	kind := models.UploadImage
	if len(args) > 1 {
		kind = models.UploadKind(args[1])
		if kind != models.UploadImage && kind != models.UploadDocument {
			return fmt.Errorf("unknown upload type %q", args[1])
		}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	path, err := a.api.Upload(ctx, filepath.Base(args[0]), f, kind)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded to %s\n", path)
	return nil
}
