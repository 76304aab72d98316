package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/config"
	appdb "github.com/yourorg/salesdash/internal/db"
	"github.com/yourorg/salesdash/internal/models"
	"github.com/yourorg/salesdash/internal/store"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "demo1234"
	seedDays     = 14
)

func main() {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== SalesDash CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Run migrations")
		fmt.Println("3) Seed database (demo user + sample data)")
		fmt.Println("4) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck(os.Stdout, os.Getenv("BASE_URL"))
		case "2":
			doMigrate()
		case "3":
			doSeed()
		case "4":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func doHealthCheck(w io.Writer, base string) {
	if base == "" {
		base = "http://127.0.0.1:8080"
	}
	url := strings.TrimRight(base, "/") + "/api/health"
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintln(w, "Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Fprintln(w, "Health status:", resp.Status)
}

func connect(ctx context.Context) (*config.Config, *store.Gateway, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := appdb.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := appdb.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	dialect, err := store.DialectFor(cfg.DB.Driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return cfg, store.New(db, dialect), func() { _ = db.Close() }, nil
}

func doMigrate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, _, closeDB, err := connect(ctx)
	if err != nil {
		log.Println("Migrate error:", err)
		return
	}
	defer closeDB()
	fmt.Printf("Migrations applied (%s)\n", cfg.DB.Driver)
}

func doSeed() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, gw, closeDB, err := connect(ctx)
	if err != nil {
		log.Println("Seed: db error:", err)
		return
	}
	defer closeDB()

	created, err := seed(ctx, gw, auth.NewPasswordHasher(cfg.BcryptCost), time.Now().UTC())
	if err != nil {
		log.Println("Seed: error:", err)
		return
	}
	if created.user {
		fmt.Printf("Seed: created user %q with password %q\n", demoEmail, demoPassword)
	} else {
		fmt.Printf("Seed: user %q already exists\n", demoEmail)
	}
	fmt.Printf("Seed: %d products, %d website visits, %d store visits\n", created.products, created.websiteVisits, created.storeVisits)
}

type seedResult struct {
	user          bool
	products      int
	websiteVisits int
	storeVisits   int
}

// seed inserts the demo user (once) and sample rows covering the last
// seedDays days, so the dashboard has both a current and a previous week.
func seed(ctx context.Context, gw *store.Gateway, hasher *auth.PasswordHasher, now time.Time) (seedResult, error) {
	var res seedResult

	_, err := store.FindOne(ctx, gw, store.Users, "email", demoEmail)
	switch {
	case errors.Is(err, store.ErrNotFound):
		hash, err := hasher.Hash(demoPassword)
		if err != nil {
			return res, err
		}
		req := models.RegisterRequest{Email: demoEmail, Password: demoPassword, Name: "Demo"}
		if _, err := store.Insert(ctx, gw, store.Users, req.Fields(hash)); err != nil && !errors.Is(err, store.ErrConflict) {
			return res, fmt.Errorf("seed user: %w", err)
		}
		res.user = true
	case err != nil:
		return res, fmt.Errorf("seed user lookup: %w", err)
	}

	for _, p := range sampleProducts() {
		if _, err := store.Insert(ctx, gw, store.Products, p.Fields()); err != nil {
			return res, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		res.products++
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := seedDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		n := seedDays - i

		wv := models.CreateWebsiteVisitRequest{
			VisitDate:  day,
			Source:     []string{"organic", "ads", "social"}[n%3],
			VisitCount: ptr(100 + 15*n),
			PageViews:  ptr(300 + 40*n),
			TimeSpent:  ptr(2.5 + float64(n%4)),
		}
		if _, err := store.Insert(ctx, gw, store.WebsiteVisits, wv.Fields()); err != nil {
			return res, fmt.Errorf("seed website visit %s: %w", day, err)
		}
		res.websiteVisits++

		sv := models.CreateStoreVisitRequest{
			VisitDate:  day,
			Location:   []string{"Downtown", "Mall", "Airport"}[n%3],
			VisitCount: ptr(40 + 5*n),
			Revenue:    ptr(float64(1200+75*n) + 0.5),
		}
		if _, err := store.Insert(ctx, gw, store.StoreVisits, sv.Fields()); err != nil {
			return res, fmt.Errorf("seed store visit %s: %w", day, err)
		}
		res.storeVisits++
	}
	return res, nil
}

func sampleProducts() []models.CreateProductRequest {
	return []models.CreateProductRequest{
		{Name: "Ceramic Mug", Category: "Kitchen", Price: ptr(9.5), StockQuantity: ptr(120)},
		{Name: "Chef Knife", Category: "Kitchen", Price: ptr(49.9), StockQuantity: ptr(35)},
		{Name: "Desk Lamp", Category: "Home", Price: ptr(29.99), StockQuantity: ptr(60)},
		{Name: "Linen Throw", Category: "Home", Price: ptr(39.0), StockQuantity: ptr(0), Status: models.ProductStatusInactive},
		{Name: "Notebook A5", Category: "Stationery", Price: ptr(4.25), StockQuantity: ptr(400)},
	}
}

func ptr[T any](v T) *T { return &v }
