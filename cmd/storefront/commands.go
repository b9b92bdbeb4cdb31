package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"storefront/internal/client/account"
	"storefront/internal/client/api"
	"storefront/internal/client/catalog"
	"storefront/internal/client/guard"
	"storefront/internal/client/model"
	"storefront/internal/client/orders"
	"storefront/internal/client/storefront"
)

var (
	errUsage       = errors.New("usage")
	errNeedLogin   = errors.New("you need to log in first")
	errNeedAdmin   = errors.New("this command is for administrators")
	errAlreadyAuth = errors.New("already logged in; run logout first")
)

type access int

const (
	anyone access = iota
	guest
	member
	admin
)

type command struct {
	name   string
	args   string
	help   string
	nargs  int
	access access
	run    func(ctx context.Context, app *storefront.App, out io.Writer, args []string) error
}

var commands = []command{
	{"login", "<email> <password>", "Sign in", 2, guest, runLogin},
	{"register", "<name> <email> <password>", "Create an account", 3, guest, runRegister},
	{"logout", "", "Sign out", 0, anyone, runLogout},
	{"whoami", "", "Show the signed-in user", 0, member, runWhoami},
	{"products", "", "List products", 0, anyone, runProducts},
	{"product", "<id>", "Show one product", 1, anyone, runProduct},
	{"categories", "", "List categories", 0, anyone, runCategories},
	{"cart", "", "Show the cart", 0, member, runCart},
	{"cart-add", "<product-id> [quantity]", "Add a product to the cart", 1, member, runCartAdd},
	{"cart-set", "<item-id> <quantity>", "Change a cart line's quantity", 2, member, runCartSet},
	{"cart-remove", "<item-id>", "Remove a cart line", 1, member, runCartRemove},
	{"cart-clear", "", "Empty the cart", 0, member, runCartClear},
	{"wishlist", "", "Show the wishlist", 0, member, runWishlist},
	{"wishlist-toggle", "<product-id>", "Save or unsave a product", 1, member, runWishlistToggle},
	{"checkout", "<bca|mandiri|gopay|ovo> <address...>", "Order everything in the cart", 2, member, runCheckout},
	{"orders", "", "Show your orders", 0, member, runOrders},
	{"admin-orders", "", "Show every order", 0, admin, runAdminOrders},
	{"confirm", "<order-id>", "Confirm an order's payment", 1, admin, runConfirm},
	{"product-create", "<category-id> <price> <stock> <name...>", "Add a product", 4, admin, runProductCreate},
	{"product-delete", "<id>", "Delete a product", 1, admin, runProductDelete},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: storefront [-banner] <command> [args]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.name, c.args, c.help)
	}
	tw.Flush()
}

func dispatch(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	if len(args) == 0 {
		usage(out)
		return errUsage
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		rest := args[1:]
		if len(rest) < c.nargs {
			return fmt.Errorf("%w: storefront %s %s", errUsage, c.name, c.args)
		}
		if err := checkAccess(app, c.access); err != nil {
			return err
		}
		return c.run(ctx, app, out, rest)
	}
	usage(out)
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

func checkAccess(app *storefront.App, a access) error {
	var d guard.Decision
	switch a {
	case guest:
		d = guard.RequireGuest(app.Session, app.Session.Role())
		if !d.Allowed {
			return errAlreadyAuth
		}
		return nil
	case member:
		d = guard.RequireAuth(app.Session)
	case admin:
		d = guard.RequireAdmin(app.Session)
	default:
		return nil
	}
	switch d.Redirect {
	case "":
		return nil
	case guard.PathLogin:
		return errNeedLogin
	default:
		return errNeedAdmin
	}
}

// describe renders err for the terminal, listing field messages when the
// server rejected input.
func describe(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		var b strings.Builder
		b.WriteString(apiErr.Message)
		for _, f := range apiErr.FieldNames() {
			fmt.Fprintf(&b, "\n  %s: %s", f, apiErr.FieldMessage(f))
		}
		return b.String()
	}
	var formErr *catalog.FormError
	if errors.As(err, &formErr) {
		var b strings.Builder
		b.WriteString("invalid product")
		for _, f := range formErr.FieldNames() {
			fmt.Fprintf(&b, "\n  %s: %s", f, formErr.Fields[f])
		}
		return b.String()
	}
	return api.UserMessage(err)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an id", errUsage, s)
	}
	return id, nil
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, s)
	}
	return n, nil
}

func runLogin(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	u, home, err := app.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s. Home: %s\n", u.Name, home)
	return nil
}

func runRegister(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	u, err := app.Account.Register(ctx, account.RegisterInput{
		Name:                 args[0],
		Email:                args[1],
		Password:             args[2],
		PasswordConfirmation: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Registered %s. Log in to continue.\n", u.Email)
	return nil
}

func runLogout(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	if err := app.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	u, err := app.Account.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func runProducts(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	products, err := app.Catalog.Products(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		cat := "-"
		if p.Category != nil {
			cat = p.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, cat, p.Price.Rupiah(), p.Stock)
	}
	return tw.Flush()
}

func runProduct(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	p, err := app.Catalog.Product(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n%s\nPrice: %s\nStock: %d\n", p.Name, p.Description, p.Price.Rupiah(), p.Stock)
	if app.Session.Authenticated() {
		if err := app.Wishlist.Fetch(ctx); err == nil && app.Wishlist.Contains(p.ID) {
			fmt.Fprintln(out, "On your wishlist.")
		}
	}
	return nil
}

func runCategories(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	cats, err := app.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		fmt.Fprintf(out, "%d\t%s\n", c.ID, c.Name)
	}
	return nil
}

func printCart(out io.Writer, c model.CartSnapshot) error {
	if len(c.Items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range c.Items {
		sub := model.Amount(float64(it.Product.Price) * float64(it.Quantity))
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.Product.Name, it.Quantity, it.Product.Price.Rupiah(), sub.Rupiah())
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", c.TotalQuantity(), model.Amount(c.TotalPrice()).Rupiah())
	return tw.Flush()
}

func runCart(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	if err := app.Cart.Fetch(ctx); err != nil {
		return err
	}
	return printCart(out, app.Cart.Snapshot())
}

func runCartAdd(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = parseInt(args[1]); err != nil {
			return err
		}
	}
	if err := app.Cart.Add(ctx, id, qty); err != nil {
		return err
	}
	return printCart(out, app.Cart.Snapshot())
}

func runCartSet(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty, err := parseInt(args[1])
	if err != nil {
		return err
	}
	if err := app.Cart.SetQuantity(ctx, id, qty); err != nil {
		return err
	}
	return printCart(out, app.Cart.Snapshot())
}

func runCartRemove(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := app.Cart.Remove(ctx, id); err != nil {
		return err
	}
	return printCart(out, app.Cart.Snapshot())
}

func runCartClear(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	if err := app.Cart.Clear(ctx); err != nil {
		return err
	}
	return printCart(out, app.Cart.Snapshot())
}

func runWishlist(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	if err := app.Wishlist.Fetch(ctx); err != nil {
		return err
	}
	snap := app.Wishlist.Snapshot()
	if len(snap.Items) == 0 {
		fmt.Fprintln(out, "Your wishlist is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tPRICE")
	for _, it := range snap.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", it.ID, it.Product.Name, it.Product.Price.Rupiah())
	}
	return tw.Flush()
}

func runWishlistToggle(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := app.Wishlist.Fetch(ctx); err != nil {
		return err
	}
	if err := app.Wishlist.Toggle(ctx, id); err != nil {
		return err
	}
	if app.Wishlist.Contains(id) {
		fmt.Fprintln(out, "Saved to wishlist.")
	} else {
		fmt.Fprintln(out, "Removed from wishlist.")
	}
	return nil
}

func runCheckout(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	if err := app.Cart.Fetch(ctx); err != nil {
		return err
	}
	o, err := app.Checkout(ctx, strings.Join(args[1:], " "), args[0])
	if err != nil && o.ID == 0 {
		return err
	}
	fmt.Fprintf(out, "Order #%d placed: %s, status %s.\n", o.ID, o.TotalPrice.Rupiah(), o.Status)
	return err
}

func printOrders(out io.Writer, list []model.Order) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No orders yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tPAYMENT\tTOTAL\tSTATUS")
	for _, o := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02"), strings.ToUpper(o.PaymentMethod), o.TotalPrice.Rupiah(), o.Status)
	}
	return tw.Flush()
}

func runOrders(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	list, err := app.Orders.List(ctx)
	if err != nil {
		return err
	}
	return printOrders(out, list)
}

func runAdminOrders(ctx context.Context, app *storefront.App, out io.Writer, _ []string) error {
	list, err := app.Orders.AdminList(ctx)
	if err != nil {
		return err
	}
	if err := printOrders(out, list); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d awaiting confirmation.\n", orders.PendingCount(list))
	return nil
}

func runConfirm(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	o, err := app.Orders.Confirm(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Order #%d: %s\n", o.ID, o.Status)
	return nil
}

func runProductCreate(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	catID, err := parseID(args[0])
	if err != nil {
		return err
	}
	price, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a price", errUsage, args[1])
	}
	stock, err := parseInt(args[2])
	if err != nil {
		return err
	}
	p, err := app.Catalog.CreateProduct(ctx, catalog.ProductInput{
		Name:       strings.Join(args[3:], " "),
		Price:      &price,
		Stock:      stock,
		CategoryID: &catID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created product #%d %s.\n", p.ID, p.Name)
	return nil
}

func runProductDelete(ctx context.Context, app *storefront.App, out io.Writer, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := app.Catalog.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted product #%d.\n", id)
	return nil
}
