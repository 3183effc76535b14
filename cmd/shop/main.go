// Command shop is an interactive storefront client: browse the catalog,
// manage the cart and run checkout against the payment API (or its
// simulated fallback when no backend is running).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"zapateria-storefront/internal/cart"
	"zapateria-storefront/internal/catalog"
	"zapateria-storefront/internal/checkout"
	"zapateria-storefront/internal/config"
	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/payments"
	"zapateria-storefront/internal/session"
	"zapateria-storefront/internal/storage"
	"zapateria-storefront/internal/vault"
)

type consoleNotifier struct{}

func (consoleNotifier) Success(title, description string) {
	if description == "" {
		fmt.Printf("✔ %s\n", title)
		return
	}
	fmt.Printf("✔ %s — %s\n", title, description)
}

func (consoleNotifier) Error(title, description string) {
	if description == "" {
		fmt.Printf("✘ %s\n", title)
		return
	}
	fmt.Printf("✘ %s — %s\n", title, description)
}

type app struct {
	catalog  *catalog.Client
	cart     *cart.Store
	vault    *vault.Vault
	checkout *checkout.Orchestrator
	session  *session.Session
	reader   *bufio.Scanner
	logger   *log.Logger

	products []domain.Product
}

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[shop] ", log.LstdFlags|log.LUTC)

	kv, err := storage.NewFileStore(cfg.StorageDir)
	if err != nil {
		logger.Fatalf("open local storage: %v", err)
	}

	notifier := consoleNotifier{}
	payClient := payments.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	v := vault.New(kv, payClient, logger)
	store := cart.NewStore(kv, logger, notifier)

	a := &app{
		catalog:  catalog.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger),
		cart:     store,
		vault:    v,
		checkout: checkout.New(store, payClient, v, notifier, logger),
		session:  session.Load(kv, logger),
		reader:   bufio.NewScanner(os.Stdin),
		logger:   logger,
	}

	fmt.Println("zapateria storefront — type 'help' for commands")
	a.repl()
}

func (a *app) repl() {
	for {
		fmt.Print("> ")
		if !a.reader.Scan() {
			return
		}
		fields := strings.Fields(a.reader.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			a.printHelp()
		case "products":
			a.listProducts()
		case "add":
			a.addToCart(args)
		case "cart":
			a.showCart()
		case "qty":
			a.updateQuantity(args)
		case "rm":
			a.removeItem(args)
		case "clear":
			a.cart.Clear()
			fmt.Println("cart cleared")
		case "login":
			a.login(args)
		case "logout":
			a.session.SignOut()
			fmt.Println("signed out")
		case "whoami":
			a.whoami()
		case "presets":
			a.listPresets()
		case "cards":
			a.listCards()
		case "checkout":
			a.runCheckout()
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q, try 'help'\n", cmd)
		}
	}
}

func (a *app) printHelp() {
	fmt.Print(`commands:
  products                 list the catalog
  add <n> [size] [color]   add product n (from 'products') to the cart
  cart                     show cart contents and totals
  qty <n> <quantity>       change quantity of cart line n
  rm <n>                   remove cart line n
  clear                    empty the cart
  login <id> <email> [name] [surname]
  logout / whoami
  presets                  list saved checkout presets
  cards                    list saved cards (local + remote)
  checkout                 submit an order
  quit
`)
}

func (a *app) loadProducts() []domain.Product {
	if a.products == nil {
		products, err := a.catalog.List(context.Background())
		if err != nil {
			a.logger.Printf("load catalog: %v", err)
			return nil
		}
		a.products = products
	}
	return a.products
}

func (a *app) listProducts() {
	for i, p := range a.loadProducts() {
		fmt.Printf("%2d. %-22s %s %s  (stock %d, sizes %v)\n",
			i+1, p.Name, p.Price.StringFixed(2), p.Currency, p.Stock, p.Sizes)
	}
}

func (a *app) addToCart(args []string) {
	products := a.loadProducts()
	if len(args) < 1 {
		fmt.Println("usage: add <n> [size] [color]")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 1 || idx > len(products) {
		fmt.Println("no such product")
		return
	}
	p := products[idx-1]

	var size *float64
	if len(args) > 1 {
		if parsed, err := strconv.ParseFloat(args[1], 64); err == nil {
			size = &parsed
		}
	}
	color := ""
	if len(args) > 2 {
		color = strings.Join(args[2:], " ")
	}

	a.cart.Add(cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Currency:  p.Currency,
		Image:     p.Thumbnail,
		Size:      size,
		Color:     color,
		Stock:     p.Stock,
	}, 1)
}

func (a *app) showCart() {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for i, item := range items {
		variant := ""
		if item.Size != nil {
			variant = fmt.Sprintf(" size %v", *item.Size)
		}
		if item.Color != "" {
			variant += " " + item.Color
		}
		fmt.Printf("%2d. %dx %s%s — %s %s\n",
			i+1, item.Quantity, item.Name, variant, item.Price.StringFixed(2), item.Currency)
	}
	summary := a.cart.Summary()
	fmt.Printf("    %d item(s), subtotal %s %s\n", summary.ItemCount, summary.Subtotal.StringFixed(2), summary.Currency)
}

func (a *app) lineKeyAt(arg string) (string, bool) {
	items := a.cart.Items()
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(items) {
		fmt.Println("no such cart line")
		return "", false
	}
	return items[idx-1].Key, true
}

func (a *app) updateQuantity(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: qty <n> <quantity>")
		return
	}
	key, ok := a.lineKeyAt(args[0])
	if !ok {
		return
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("usage: qty <n> <quantity>")
		return
	}
	a.cart.UpdateQuantity(key, qty)
	a.showCart()
}

func (a *app) removeItem(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: rm <n>")
		return
	}
	if key, ok := a.lineKeyAt(args[0]); ok {
		a.cart.Remove(key)
	}
}

func (a *app) login(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: login <id> <email> [name] [surname]")
		return
	}
	user := domain.User{ID: args[0], Email: args[1]}
	if len(args) > 2 {
		user.Name = args[2]
	}
	if len(args) > 3 {
		user.Surname = args[3]
	}
	a.session.SignIn(user)
	fmt.Printf("signed in as %s\n", a.session.User().Email)
}

func (a *app) whoami() {
	user := a.session.User()
	if user == nil {
		fmt.Println("not signed in")
		return
	}
	fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
}

func (a *app) listPresets() {
	user := a.session.User()
	if user == nil {
		fmt.Println("sign in to see presets")
		return
	}
	presets := a.vault.Presets(user.ID)
	if len(presets) == 0 {
		fmt.Println("no presets saved")
		return
	}
	for i, p := range presets {
		fmt.Printf("%2d. %s\n", i+1, vault.FormatPresetLabel(p))
	}
}

func (a *app) listCards() {
	user := a.session.User()
	if user == nil {
		fmt.Println("sign in to see cards")
		return
	}
	cards := a.vault.Cards(context.Background(), user.ID)
	if len(cards) == 0 {
		fmt.Println("no cards saved")
		return
	}
	for i, c := range cards {
		fmt.Printf("%2d. %s\n", i+1, vault.FormatCardLabel(c))
	}
}

func (a *app) prompt(label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !a.reader.Scan() {
		return def
	}
	value := strings.TrimSpace(a.reader.Text())
	if value == "" {
		return def
	}
	return value
}

func (a *app) runCheckout() {
	if len(a.cart.Items()) == 0 {
		fmt.Println("cart is empty")
		return
	}

	user := a.session.User()
	details := domain.PaymentDetails{City: "Santo Domingo", Country: "Dominican Republic"}

	// Known account fields stay locked, same as the web form.
	if user != nil && user.FullName() != "" {
		details.FullName = user.FullName()
		fmt.Printf("full name: %s (account)\n", details.FullName)
	} else {
		details.FullName = a.prompt("full name", "")
	}
	if user != nil && user.Email != "" {
		details.Email = user.Email
		fmt.Printf("email: %s (account)\n", details.Email)
	} else {
		details.Email = a.prompt("email", "")
	}

	if user != nil {
		if presets := a.vault.Presets(user.ID); len(presets) > 0 {
			fmt.Println("saved presets:")
			for i, p := range presets {
				fmt.Printf("%2d. %s\n", i+1, vault.FormatPresetLabel(p))
			}
			if raw := a.prompt("use preset (number or blank)", ""); raw != "" {
				if idx, err := strconv.Atoi(raw); err == nil && idx >= 1 && idx <= len(presets) {
					applied := vault.ApplyPreset(presets[idx-1])
					details.Address = applied.Address
					details.City = applied.City
					details.Country = applied.Country
					fmt.Printf("card on file: %s — enter the full number to confirm\n", applied.CardNumber)
				}
			}
		}
	}

	details.Address = a.prompt("delivery address", details.Address)
	details.City = a.prompt("city", details.City)
	details.Country = a.prompt("country", details.Country)
	details.CardNumber = a.prompt("card number", "")
	details.Expiration = a.prompt("expiration (MM/YY)", "")
	details.CVV = a.prompt("cvv", "")

	saveAsPreset := false
	if user != nil {
		saveAsPreset = strings.EqualFold(a.prompt("save these details as a preset? (y/N)", "n"), "y")
	}

	result := a.checkout.Process(context.Background(), checkout.ProcessInput{
		Details:      details,
		User:         user,
		SaveAsPreset: saveAsPreset,
	})
	if !result.Success {
		fmt.Printf("payment failed: %s\n", result.Message)
		return
	}
	if result.Simulated {
		fmt.Printf("order %s confirmed (simulated payment — no backend reachable)\n", result.OrderID)
	} else {
		fmt.Printf("order %s confirmed\n", result.OrderID)
	}
}
