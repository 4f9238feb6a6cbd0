package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/config"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/entity"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/export"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/session"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/store"
)

const usage = "expected one of 'login', 'logout', 'whoami', 'list' or 'export' subcommands"

var entities = []string{"brands", "categories", "products", "customers", "orders"}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	email := loginCmd.String("email", "", "Admin email")
	password := loginCmd.String("password", "", "Admin password")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listEntity := listCmd.String("entity", "", "One of "+strings.Join(entities, ", "))
	search := listCmd.String("q", "", "Search text")
	sortSpec := listCmd.String("sort", "", "Sort keys, e.g. name or -updatedAt,name")
	page := listCmd.Int("page", 1, "Page number")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportEntity := exportCmd.String("entity", "", "One of "+strings.Join(entities, ", "))
	exportSearch := exportCmd.String("q", "", "Search text")
	exportSort := exportCmd.String("sort", "", "Sort keys")
	output := exportCmd.String("o", "", "Output .xlsx file")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := store.NewStore(cfg.StateDBPath)
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to migrate state database: %v", err)
	}
	sess, err := session.Init(db)
	if err != nil {
		log.Fatalf("Failed to restore session: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, nil)
	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		loginCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			loginCmd.PrintDefaults()
			os.Exit(1)
		}
		login(ctx, client, sess, *email, *password)
	case "logout":
		if err := sess.Logout(); err != nil {
			log.Fatalf("Failed to log out: %v", err)
		}
		fmt.Println("Logged out.")
	case "whoami":
		fmt.Printf("state: %s\n", sess.State())
		if sess.Role() != "" {
			fmt.Printf("role:  %s\n", sess.Role())
		}
	case "list":
		listCmd.Parse(os.Args[2:])
		q := listview.Query{Text: *search, Sort: listview.ParseSort(*sortSpec), Page: *page - 1}
		cat := adminCatalog(client, sess)
		if err := list(api.WithToken(ctx, sess.Token()), cat, *listEntity, q); err != nil {
			log.Fatalf("list %s: %v", *listEntity, err)
		}
	case "export":
		exportCmd.Parse(os.Args[2:])
		if *output == "" {
			*output = *exportEntity + ".xlsx"
		}
		q := listview.Query{Text: *exportSearch, Sort: listview.ParseSort(*exportSort)}
		cat := adminCatalog(client, sess)
		if err := exportFile(api.WithToken(ctx, sess.Token()), cat, *exportEntity, q, *output); err != nil {
			log.Fatalf("export %s: %v", *exportEntity, err)
		}
		fmt.Printf("Exported %s to %s\n", *exportEntity, *output)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func login(ctx context.Context, client *api.Client, sess *session.Session, email, password string) {
	resp, err := client.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	if err := sess.Establish(resp); err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	if !sess.IsAdmin() {
		fmt.Println("You are not authorized to access the admin panel.")
		os.Exit(1)
	}
	fmt.Printf("Logged in as %s.\n", resp.User.Username)
}

func adminCatalog(client *api.Client, sess *session.Session) *catalog.Catalog {
	switch sess.State() {
	case session.AuthenticatedAdmin:
		return catalog.New(client)
	case session.AuthenticatedNonAdmin:
		log.Fatal("You are not authorized to access the admin panel.")
	default:
		log.Fatal("Not logged in. Run 'login' first.")
	}
	return nil
}

// withBrands loads the brands that category and product tables show by name.
func withBrands(ctx context.Context, cat *catalog.Catalog) error {
	return cat.Brands.Refresh(ctx)
}

func list(ctx context.Context, cat *catalog.Catalog, name string, q listview.Query) error {
	switch name {
	case "brands":
		return printPage(ctx, cat.Brands, catalog.BrandTable, q)
	case "categories":
		if err := withBrands(ctx, cat); err != nil {
			return err
		}
		return printPage(ctx, cat.Categories, func() *listview.Table[models.Category] { return catalog.CategoryTable(cat.BrandNames()) }, q)
	case "products":
		if err := withBrands(ctx, cat); err != nil {
			return err
		}
		return printPage(ctx, cat.Products, func() *listview.Table[models.Product] { return catalog.ProductTable(cat.BrandNames()) }, q)
	case "customers":
		return printPage(ctx, cat.Customers, catalog.CustomerTable, q)
	case "orders":
		return printPage(ctx, cat.Orders, catalog.OrderTable, q)
	}
	return fmt.Errorf("unknown entity %q, expected one of %s", name, strings.Join(entities, ", "))
}

func printPage[T entity.Record](ctx context.Context, res *catalog.Resource[T], table func() *listview.Table[T], q listview.Query) error {
	if err := res.Refresh(ctx); err != nil {
		return err
	}
	t := table()
	p, err := t.View(res.Items(), q)
	if errors.Is(err, listview.ErrUnknownField) {
		fmt.Fprintln(os.Stderr, "Unknown sort column; showing unsorted results.")
		q.Sort = nil
		p, err = t.View(res.Items(), q)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	labels := []string{"ID"}
	for _, f := range t.Fields {
		labels = append(labels, strings.ToUpper(f.Label))
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))
	for _, row := range p.Rows {
		cells := []string{row.Item.RecordID()}
		for _, f := range t.Fields {
			cells = append(cells, f.Display(row.Item))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("page %d of %d, %d records\n", p.Page+1, max(p.PageCount, 1), p.TotalItems)
	return nil
}

func exportFile(ctx context.Context, cat *catalog.Catalog, name string, q listview.Query, path string) error {
	if !slices.Contains(entities, name) {
		return fmt.Errorf("unknown entity %q, expected one of %s", name, strings.Join(entities, ", "))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch name {
	case "brands":
		return writeSheet(ctx, f, cat.Brands, catalog.BrandTable(), q)
	case "categories":
		if err := withBrands(ctx, cat); err != nil {
			return err
		}
		return writeSheet(ctx, f, cat.Categories, catalog.CategoryTable(cat.BrandNames()), q)
	case "products":
		if err := withBrands(ctx, cat); err != nil {
			return err
		}
		return writeSheet(ctx, f, cat.Products, catalog.ProductTable(cat.BrandNames()), q)
	case "customers":
		return writeSheet(ctx, f, cat.Customers, catalog.CustomerTable(), q)
	default:
		return writeSheet(ctx, f, cat.Orders, catalog.OrderTable(), q)
	}
}

func writeSheet[T entity.Record](ctx context.Context, f *os.File, res *catalog.Resource[T], t *listview.Table[T], q listview.Query) error {
	if err := res.Refresh(ctx); err != nil {
		return err
	}
	items, err := t.Apply(res.Items(), q)
	if err != nil {
		return err
	}
	return export.Write(f, res.Name(), t, items)
}
