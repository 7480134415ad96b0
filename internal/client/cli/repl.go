package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error

	Books(ctx context.Context, args []string) error
	Book(ctx context.Context, args []string) error
	Categories(ctx context.Context) error
	Reviews(ctx context.Context, args []string) error
	Review(ctx context.Context, args []string) error
	AddBook(ctx context.Context) error
	DeleteBook(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error

	Cart(ctx context.Context) error
	AddToCart(ctx context.Context, args []string) error
	RemoveFromCart(ctx context.Context, args []string) error
	Checkout(ctx context.Context) error
	Orders(ctx context.Context) error
	Order(ctx context.Context, args []string) error
}

const (
	guestHelp = "Available commands: register, login, books [filter], book <id>, categories, reviews <id>, help, exit"
	userHelp  = "Available commands: whoami, profile, editprofile, books [filter], book <id>, categories, " +
		"reviews <id>, review <id>, cart, addtocart <id>, rmcart <id>, checkout, orders, order <id>, " +
		"upload <path> [image|document], addbook, delbook <id>, logout, help, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop ends on EOF, "exit" or "quit". Command errors are printed and the
// loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("booknest (%s)> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "editprofile":
			cmdErr = a.EditProfile(ctx)

		case "books", "l":
			cmdErr = a.Books(ctx, args)
		case "book":
			cmdErr = a.Book(ctx, args)
		case "categories":
			cmdErr = a.Categories(ctx)
		case "reviews":
			cmdErr = a.Reviews(ctx, args)
		case "review":
			cmdErr = a.Review(ctx, args)
		case "addbook":
			cmdErr = a.AddBook(ctx)
		case "delbook":
			cmdErr = a.DeleteBook(ctx, args)
		case "upload":
			cmdErr = a.Upload(ctx, args)

		case "cart":
			cmdErr = a.Cart(ctx)
		case "addtocart":
			cmdErr = a.AddToCart(ctx, args)
		case "rmcart":
			cmdErr = a.RemoveFromCart(ctx, args)
		case "checkout":
			cmdErr = a.Checkout(ctx)
		case "orders":
			cmdErr = a.Orders(ctx)
		case "order":
			cmdErr = a.Order(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
		if ctx.Err() != nil {
			return
		}
	}
}
