// Command storefront is a terminal storefront for the pizzeria catalog:
// browse and search the menu, and manage a cart persisted under the user
// cache directory. The cart survives restarts; it mirrors what the web UI
// keeps in browser storage.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fornero/pizzeria-storefront/internal/cart"
	"github.com/fornero/pizzeria-storefront/internal/catalog"
	"github.com/fornero/pizzeria-storefront/internal/client"
	"github.com/fornero/pizzeria-storefront/internal/storage/file"
	"github.com/fornero/pizzeria-storefront/pkg/debounce"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: storefront [flags] <command> [args]

commands:
  menu                      show the full menu
  search [term]             search products; without a term, interactive mode
  add                       add a customized product to the cart (see add -h)
  cart                      show the cart
  qty <item-id> <n>         change a line item's quantity (0 removes it)
  remove <item-id>          remove a line item
  clear                     empty the cart

flags:
`)
	flag.PrintDefaults()
}

func main() {
	var (
		apiURL   string
		cartPath string
	)

	flag.StringVar(&apiURL, "api-url", envOr("PIZZA_API_URL", "http://localhost:8080"), "catalog API base URL")
	flag.StringVar(&cartPath, "cart-file", "", "cart snapshot path (default: user cache dir)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if cartPath == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve cache dir: %v\n", err)
			os.Exit(1)
		}
		cartPath = filepath.Join(cacheDir, "pizzeria", "cart.json")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	lg, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	cli := &storefront{
		api:   client.New(apiURL),
		store: newStore(ctx, cartPath, lg),
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := cli.dispatch(ctx, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newStore builds the cart store in the documented order:
// construct, load, then mutate.
func newStore(ctx context.Context, path string, lg *zap.Logger) *cart.Store {
	storage := file.NewCartStorage(path, lg)
	store := cart.NewStore(storage, lg)
	store.Load(ctx)
	return store
}

type storefront struct {
	api   *client.Client
	store *cart.Store
}

func (s *storefront) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "menu":
		return s.menu(ctx)
	case "search":
		return s.search(ctx, args)
	case "add":
		return s.add(ctx, args)
	case "cart":
		return s.showCart()
	case "qty":
		return s.qty(ctx, args)
	case "remove":
		return s.remove(ctx, args)
	case "clear":
		s.store.Clear(ctx)
		fmt.Println("cart cleared")
		return nil
	default:
		usage()
		return errors.Errorf("unknown command %q", cmd)
	}
}

func (s *storefront) menu(ctx context.Context) error {
	menu, err := s.api.GetFullMenu(ctx)
	if err != nil {
		return err
	}

	for _, c := range menu.Categories {
		fmt.Printf("%s %s\n", c.Icon, c.Name)
		for _, p := range c.Products {
			fmt.Printf("  [%d] %s", p.ID, p.Name)
			if p.Description != "" {
				fmt.Printf(" — %s", p.Description)
			}
			fmt.Println()
			for _, v := range p.Variations {
				marker := " "
				if !v.Available {
					marker = "✗"
				}
				fmt.Printf("      %s (%d) %-12s %8s\n", marker, v.ID, v.Label, v.BasePrice.StringFixed(2))
			}
		}
	}
	return nil
}

func (s *storefront) search(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return s.printSearch(ctx, strings.Join(args, " "))
	}

	// Interactive mode: debounce keystroke-ish input the same way the web
	// search box does, so half-typed terms never hit the API.
	fmt.Println("type to search, empty line to quit")
	deb := debounce.New(debounce.DefaultDelay)
	defer deb.Stop()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			return nil
		}
		deb.Do(func() {
			if err := s.printSearch(ctx, term); err != nil {
				fmt.Fprintf(os.Stderr, "search: %v\n", err)
			}
		})
	}
	return scanner.Err()
}

func (s *storefront) printSearch(ctx context.Context, term string) error {
	products, err := s.api.SearchProducts(ctx, term)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Printf("no products match %q\n", term)
		return nil
	}
	for _, p := range products {
		fmt.Printf("[%d] %s", p.ID, p.Name)
		if len(p.Variations) > 0 {
			fmt.Printf(" (from %s)", cheapestPrice(p).StringFixed(2))
		}
		fmt.Println()
	}
	return nil
}

// cheapestPrice returns the lowest variation base price for display.
func cheapestPrice(p catalog.Product) decimal.Decimal {
	lowest := p.Variations[0].BasePrice
	for _, v := range p.Variations[1:] {
		if v.BasePrice.LessThan(lowest) {
			lowest = v.BasePrice
		}
	}
	return lowest
}

func (s *storefront) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var (
		productID   = fs.Int64("product", 0, "product id (required)")
		variationID = fs.Int64("variation", 0, "variation id (required)")
		quantity    = fs.Int("qty", 1, "quantity")
		extras      = fs.String("extra", "", "comma-separated ingredient ids to add as paid extras")
		omissions   = fs.String("omit", "", "comma-separated standard ingredient ids to leave out")
		notes       = fs.String("notes", "", "free-text notes (max 200 chars)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == 0 || *variationID == 0 {
		return errors.New("add requires --product and --variation")
	}

	menu, err := s.api.GetFullMenu(ctx)
	if err != nil {
		return err
	}

	product, err := findProduct(menu, *productID)
	if err != nil {
		return err
	}
	variation, err := findVariation(product, *variationID)
	if err != nil {
		return err
	}

	added, err := resolveExtras(menu, *extras)
	if err != nil {
		return err
	}
	removed, err := resolveOmissions(product, *omissions)
	if err != nil {
		return err
	}

	if n := []rune(*notes); len(n) > cart.MaxNotesLength {
		*notes = string(n[:cart.MaxNotesLength])
	}

	item := s.store.AddItem(ctx, cart.Selection{
		Product:            *product,
		Variation:          *variation,
		Quantity:           *quantity,
		AddedIngredients:   added,
		RemovedIngredients: removed,
		Notes:              *notes,
	})
	fmt.Printf("added %s (%s) ×%d — %s  [%s]\n",
		item.Product.Name, item.Variation.Label, item.Quantity, item.Total.StringFixed(2), item.ID)
	return nil
}

func (s *storefront) showCart() error {
	items := s.store.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}

	for _, it := range items {
		fmt.Printf("%s  %s (%s) ×%d  %s\n",
			it.ID, it.Product.Name, it.Variation.Label, it.Quantity, it.Total.StringFixed(2))
		for _, ing := range it.AddedIngredients {
			fmt.Printf("    + %s (%s)\n", ing.Name, ing.AdditionalPrice.StringFixed(2))
		}
		for _, id := range it.RemovedIngredients {
			if name := ingredientName(it.Product, id); name != "" {
				fmt.Printf("    - %s\n", name)
			}
		}
		if it.Notes != "" {
			fmt.Printf("    note: %s\n", it.Notes)
		}
	}
	fmt.Printf("\n%d item(s), subtotal %s\n", s.store.TotalItemCount(), s.store.Subtotal().StringFixed(2))
	return nil
}

func (s *storefront) qty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: qty <item-id> <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "parse quantity")
	}
	s.store.UpdateQuantity(ctx, args[0], n)
	return s.showCart()
}

func (s *storefront) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <item-id>")
	}
	s.store.RemoveItem(ctx, args[0])
	return s.showCart()
}

func findProduct(menu *catalog.Menu, id int64) (*catalog.Product, error) {
	for ci := range menu.Categories {
		for pi := range menu.Categories[ci].Products {
			if menu.Categories[ci].Products[pi].ID == id {
				return &menu.Categories[ci].Products[pi], nil
			}
		}
	}
	return nil, errors.Errorf("product %d not on the menu", id)
}

func findVariation(p *catalog.Product, id int64) (*catalog.Variation, error) {
	for i := range p.Variations {
		if p.Variations[i].ID == id {
			if !p.Variations[i].Available {
				return nil, errors.Errorf("variation %d of %q is unavailable", id, p.Name)
			}
			return &p.Variations[i], nil
		}
	}
	return nil, errors.Errorf("product %q has no variation %d", p.Name, id)
}

// resolveExtras maps ingredient ids to ingredient snapshots drawn from the
// menu's ingredient pool (every recipe ingredient across all products).
func resolveExtras(menu *catalog.Menu, csv string) ([]catalog.Ingredient, error) {
	ids, err := parseIDList(csv)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	pool := make(map[int64]catalog.Ingredient)
	for _, c := range menu.Categories {
		for _, p := range c.Products {
			for _, pi := range p.StandardIngredients {
				pool[pi.Ingredient.ID] = pi.Ingredient
			}
		}
	}

	out := make([]catalog.Ingredient, 0, len(ids))
	for _, id := range ids {
		ing, ok := pool[id]
		if !ok {
			return nil, errors.Errorf("unknown ingredient %d", id)
		}
		if !ing.Available {
			return nil, errors.Errorf("ingredient %s is unavailable", ing.Name)
		}
		out = append(out, ing)
	}
	return out, nil
}

// resolveOmissions validates that every omitted id is a non-mandatory
// standard ingredient of the product.
func resolveOmissions(p *catalog.Product, csv string) ([]int64, error) {
	ids, err := parseIDList(csv)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	for _, id := range ids {
		found := false
		for _, pi := range p.StandardIngredients {
			if pi.Ingredient.ID != id {
				continue
			}
			if pi.Mandatory {
				return nil, errors.Errorf("ingredient %s cannot be removed", pi.Ingredient.Name)
			}
			found = true
			break
		}
		if !found {
			return nil, errors.Errorf("product %q has no standard ingredient %d", p.Name, id)
		}
	}
	return ids, nil
}

func parseIDList(csv string) ([]int64, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse ingredient id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

func ingredientName(p catalog.Product, id int64) string {
	for _, pi := range p.StandardIngredients {
		if pi.Ingredient.ID == id {
			return pi.Ingredient.Name
		}
	}
	return ""
}
