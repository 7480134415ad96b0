package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/booknest/internal/client/models"
)

func (a *App) Cart(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	cart, err := a.api.GetCart(ctx)
	if err != nil {
		return err
	}
	printCart(a.out, cart)
	return nil
}

func (a *App) AddToCart(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseID(args, 0, "book")
	if err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	cart, err := a.api.AddToCart(ctx, id)
	if err != nil {
		return err
	}
	printCart(a.out, cart)
	return nil
}

func (a *App) RemoveFromCart(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseID(args, 0, "book")
	if err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	cart, err := a.api.RemoveFromCart(ctx, id)
	if err != nil {
		return err
	}
	printCart(a.out, cart)
	return nil
}

// Checkout places an order for everything in the cart.
func (a *App) Checkout(ctx context.Context) error {
	p, ok := a.session.Current().Profile()
	if !ok {
		return errLoginRequired
	}
	addr, err := getSimpleText(a.reader, fmt.Sprintf("Shipping address [%s]", p.Address), a.out)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = p.Address
	}
	if addr == "" {
		return fmt.Errorf("a shipping address is required")
	}

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	order, err := a.api.CreateOrder(ctx, models.OrderInput{ShippingAddress: addr})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %d placed\n", order.ID)
	return nil
}

func (a *App) Orders(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	orders, err := a.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	printOrders(a.out, orders)
	return nil
}

func (a *App) Order(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := parseID(args, 0, "order")
	if err != nil {
		return err
	}
	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	o, err := a.api.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	printOrder(a.out, o)
	return nil
}
