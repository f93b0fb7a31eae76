package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"food-order-service/internal/apperr"
	"food-order-service/internal/cart"
	"food-order-service/internal/checkout"
	"food-order-service/internal/client"
	"food-order-service/internal/config"
	"food-order-service/internal/pricing"
	"food-order-service/internal/session"
	"food-order-service/internal/voucher"
)

const usage = `usage: storefront [flags] <command> [args]

commands:
  register                      create an account (--name --phone --password [--email --address])
  login                         log in (--phone --password)
  logout                        forget the saved session
  whoami                        show the logged in user
  menu                          list menu items
  cart                          show the cart and its totals (--voucher)
  add <menuItemId> [quantity]   add an item to the cart
  set <menuItemId> <quantity>   change a quantity; 0 removes the line
  remove <menuItemId>           remove a line
  clear                         empty the cart
  checkout                      place an order (--name --phone --address [--voucher --payment])
  orders                        list your orders
  cancel <orderId>              cancel one of your orders

Without --redis the session is kept in memory and is gone when the command
exits, so a login does not carry over to cart, checkout or orders. Pass
--redis <addr> to keep it between runs.

flags:
`

type app struct {
	api      *client.Client
	session  *session.Session
	cart     *cart.Engine
	checkout *checkout.Service
	// inMemory is set when the session store does not outlive the process.
	inMemory bool
}

const sessionNotKeptHint = "the session is kept in memory and ends with each run, pass --redis <addr> to stay logged in"

var errSessionNotKept = fmt.Errorf("%w: %s", apperr.ErrNotAuthenticated, sessionNotKeptHint)

func main() {
	flags := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	envFile := flags.String("config", ".env", "env file to read settings from")
	apiURL := flags.String("api", "", "backend base URL (overrides API_BASE_URL)")
	redisAddr := flags.String("redis", "", "redis address for the saved session; empty keeps it in memory")
	verbose := flags.BoolP("verbose", "v", false, "log requests")
	name := flags.String("name", "", "full name")
	phone := flags.String("phone", "", "phone number")
	password := flags.String("password", "", "password")
	email := flags.String("email", "", "email")
	address := flags.String("address", "", "shipping address")
	voucherCode := flags.String("voucher", "", "voucher code")
	payment := flags.String("payment", checkout.DefaultPaymentMethod, "payment method")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}

	var store session.KeyValueStore = session.NewMemoryStore()
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionPrefix, 0)
	}

	api := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(logger))
	sess := session.New(api, store)
	api.SetTokenSource(sess)
	engine := cart.NewEngine(api, cart.WithLogger(logger))

	orders := checkout.NewService(api, voucher.NewChecker(api), engine,
		checkout.WithShippingFee(cfg.ShippingFee), checkout.WithLogger(logger))

	a := &app{
		api:      api,
		session:  sess,
		cart:     engine,
		checkout: orders,
		inMemory: *redisAddr == "",
	}

	ctx := context.Background()
	if err := sess.Restore(ctx); err != nil {
		logger.Fatal().Err(err).Msg("restore session")
	}

	args := flags.Args()
	switch args[0] {
	case "register":
		err = a.register(ctx, client.RegisterRequest{FullName: *name, Email: *email, PhoneNumber: *phone, Address: *address, Password: *password})
	case "login":
		err = a.login(ctx, *phone, *password)
	case "logout":
		err = sess.Logout(ctx)
	case "whoami":
		err = a.whoami()
	case "menu":
		err = a.menu(ctx)
	case "cart":
		err = a.showCart(ctx, *voucherCode)
	case "add":
		err = a.add(ctx, args[1:])
	case "set":
		err = a.set(ctx, args[1:])
	case "remove":
		err = a.remove(ctx, args[1:])
	case "clear":
		err = a.withUser(func(userID int) error { return engine.Clear(ctx, userID) })
	case "checkout":
		err = a.placeOrder(ctx, checkout.ShippingInfo{FullName: *name, Phone: *phone, Address: *address, PaymentMethod: *payment}, *voucherCode)
	case "orders":
		err = a.orders(ctx)
	case "cancel":
		err = a.cancel(ctx, args[1:])
	default:
		flags.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

// describe turns the error kinds of the storefront core into a line a
// customer can act on.
func describe(err error) string {
	var remote *apperr.RemoteError
	switch {
	case errors.Is(err, errSessionNotKept):
		return "please log in first (" + sessionNotKeptHint + ")"
	case errors.Is(err, apperr.ErrNotAuthenticated):
		return "please log in first"
	case errors.Is(err, apperr.ErrNetworkFailure):
		return "cannot reach the server, check your connection and try again"
	case errors.Is(err, apperr.ErrVoucherInapplicable):
		return "voucher cannot be used: " + err.Error()
	case errors.Is(err, checkout.ErrEmptyCart):
		return "your cart is empty"
	case errors.As(err, &remote):
		return remote.Error()
	}
	return err.Error()
}

func (a *app) withUser(fn func(userID int) error) error {
	userID := a.session.UserID()
	if userID <= 0 {
		return a.notLoggedIn()
	}
	return fn(userID)
}

func (a *app) notLoggedIn() error {
	if a.inMemory {
		return errSessionNotKept
	}
	return apperr.ErrNotAuthenticated
}

func (a *app) warnIfNotKept() {
	if a.inMemory {
		fmt.Fprintln(os.Stderr, "note: no --redis given, this login ends when the command exits")
	}
}

func (a *app) register(ctx context.Context, r client.RegisterRequest) error {
	u, err := a.session.Register(ctx, r)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s (user %d)\n", u.FullName, u.ID)
	a.warnIfNotKept()
	return nil
}

func (a *app) login(ctx context.Context, phone, password string) error {
	u, err := a.session.Login(ctx, phone, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (user %d)\n", u.FullName, u.ID)
	a.warnIfNotKept()
	return nil
}

func (a *app) whoami() error {
	u := a.session.User()
	if u == nil {
		return a.notLoggedIn()
	}
	fmt.Printf("%s <%s> %s, role %s\n", u.FullName, u.PhoneNumber, u.Email, u.RoleName)
	return nil
}

func (a *app) menu(ctx context.Context) error {
	items, err := a.api.MenuItems(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tAVAILABLE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", it.ID, it.Name, vnd(it.Price), it.Available)
	}
	return w.Flush()
}

func (a *app) showCart(ctx context.Context, voucherCode string) error {
	return a.withUser(func(userID int) error {
		if err := a.cart.Load(ctx, userID); err != nil {
			return err
		}
		c := a.cart.Snapshot()
		if c.IsEmpty() {
			fmt.Println("Your cart is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tITEM\tQTY\tPRICE\tTOTAL")
		for _, l := range c.Lines {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity, vnd(l.UnitPrice), vnd(l.LineTotal()))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		totals, err := a.checkout.Preview(ctx, userID, voucherCode)
		if err != nil {
			return err
		}
		printTotals(totals)
		return nil
	})
}

func printTotals(t pricing.Totals) {
	fmt.Printf("\n%d item(s)\n", t.ItemCount)
	fmt.Printf("Subtotal:  %s\n", vnd(t.Subtotal))
	if t.VoucherErr != nil {
		fmt.Printf("Voucher:   not applied (%v)\n", t.VoucherErr)
	} else if t.Discount > 0 {
		fmt.Printf("Discount: -%s\n", vnd(t.Discount))
	}
	fmt.Printf("Shipping:  %s\n", vnd(t.ShippingFee))
	fmt.Printf("Total:     %s\n", vnd(t.GrandTotal))
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return apperr.InvalidArgument("add needs a menu item id")
	}
	id, err := positiveInt(args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = positiveInt(args[1]); err != nil {
			return err
		}
	}
	return a.withUser(func(userID int) error {
		if err := a.cart.Add(ctx, userID, id, qty); err != nil {
			return err
		}
		fmt.Printf("Cart now has %d line(s).\n", len(a.cart.Snapshot().Lines))
		return nil
	})
}

func (a *app) set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return apperr.InvalidArgument("set needs a menu item id and a quantity")
	}
	id, err := positiveInt(args[0])
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return apperr.InvalidArgument("invalid quantity %q", args[1])
	}
	return a.withUser(func(userID int) error {
		return a.cart.UpdateQuantity(ctx, userID, id, qty)
	})
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return apperr.InvalidArgument("remove needs a menu item id")
	}
	id, err := positiveInt(args[0])
	if err != nil {
		return err
	}
	return a.withUser(func(userID int) error {
		return a.cart.Remove(ctx, userID, id)
	})
}

func (a *app) placeOrder(ctx context.Context, info checkout.ShippingInfo, voucherCode string) error {
	if a.session.UserID() <= 0 {
		return a.notLoggedIn()
	}
	if info.FullName == "" || info.Phone == "" || info.Address == "" {
		if u := a.session.User(); u != nil {
			info.FullName = firstNonEmpty(info.FullName, u.FullName)
			info.Phone = firstNonEmpty(info.Phone, u.PhoneNumber)
			info.Address = firstNonEmpty(info.Address, u.Address)
		}
	}
	res, err := a.checkout.PlaceOrder(ctx, a.session.UserID(), info, voucherCode)
	if err != nil {
		return err
	}
	fmt.Printf("Order %d placed, status %s.\n", res.Order.ID, res.Order.Status)
	printTotals(res.Totals)
	return nil
}

func (a *app) orders(ctx context.Context) error {
	return a.withUser(func(userID int) error {
		orders, err := a.api.UserOrders(ctx, userID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tSTATUS\tPAYMENT\tTOTAL")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, o.PaymentStatus, vnd(o.TotalPrice))
		}
		return w.Flush()
	})
}

func (a *app) cancel(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return apperr.InvalidArgument("cancel needs an order id")
	}
	id, err := positiveInt(args[0])
	if err != nil {
		return err
	}
	return a.withUser(func(int) error {
		o, err := a.api.CancelOrder(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("Order %d is now %s.\n", o.ID, o.Status)
		return nil
	})
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, apperr.InvalidArgument("%q is not a positive number", s)
	}
	return n, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// vnd formats an amount as "45.000 ₫".
func vnd(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := amount < 0
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out) + " ₫"
	}
	return string(out) + " ₫"
}
