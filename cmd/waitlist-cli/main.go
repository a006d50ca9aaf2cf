package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zuiji/legacy-waitlist/internal/permissions"
	"github.com/zuiji/legacy-waitlist/internal/snowflake"
	"gopkg.in/yaml.v3"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: waitlist-cli migrate")
			fmt.Println()
			fmt.Println("Run database migrations from the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: waitlist-cli seed [--file fixture.yaml]")
			fmt.Println()
			fmt.Println("Seed the database with characters and staff grants. Without --file")
			fmt.Println("a small built-in demo fixture is used.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed(argValue("--file", os.Args[2:])))
	case "grant":
		if hasFlag("--help", os.Args[2:]) || len(os.Args) < 4 {
			fmt.Println("Usage: waitlist-cli grant <character_id> <role>")
			fmt.Println()
			fmt.Printf("Grant a staff role to a character. Roles: %s.\n", strings.Join(permissions.Roles(), ", "))
			fmt.Println("The character must have logged in at least once.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			if hasFlag("--help", os.Args[2:]) {
				return
			}
			os.Exit(1)
		}
		os.Exit(runGrant(os.Args[2], os.Args[3]))
	case "admins":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: waitlist-cli admins")
			fmt.Println()
			fmt.Println("List all staff characters and their roles.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runAdmins())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: waitlist-cli health")
			fmt.Println()
			fmt.Println("Check if the waitlist server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("waitlist-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: waitlist-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed characters and staff grants (built-in or YAML fixture)")
	fmt.Println("  grant    Grant a staff role to a character")
	fmt.Println("  admins   List staff characters and their roles")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'waitlist-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func argValue(flag string, args []string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func connect(ctx context.Context) *pgxpool.Pool {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		os.Exit(1)
	}
	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		os.Exit(1)
	}
	return pool
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Println("running migrations...")
	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", upErr)
		return 1
	}

	v, dirty, _ := m.Version()
	if upErr == migrate.ErrNoChange {
		fmt.Printf("no new migrations (current version: %d)\n", v)
	} else {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

type seedFixture struct {
	Characters []seedCharacter `yaml:"characters"`
	Admins     []seedAdmin     `yaml:"admins"`
	Bans       []seedBan       `yaml:"bans"`
}

type seedCharacter struct {
	ID            int64  `yaml:"id"`
	Name          string `yaml:"name"`
	CorporationID *int64 `yaml:"corporation_id"`
}

type seedAdmin struct {
	CharacterID int64  `yaml:"character_id"`
	Role        string `yaml:"role"`
	GrantedBy   *int64 `yaml:"granted_by"`
}

type seedBan struct {
	EntityID     int64   `yaml:"entity_id"`
	EntityName   string  `yaml:"entity_name"`
	Category     string  `yaml:"category"`
	IssuedBy     int64   `yaml:"issued_by"`
	Reason       string  `yaml:"reason"`
	PublicReason *string `yaml:"public_reason"`
}

// demoFixture mirrors what a tiny installation looks like: two staff
// characters, one line pilot, and an open ban.
func demoFixture() *seedFixture {
	corp := int64(98636464)
	return &seedFixture{
		Characters: []seedCharacter{
			{ID: 94067988, Name: "Arcturus Vex", CorporationID: &corp},
			{ID: 95144320, Name: "Mira Deladrien", CorporationID: &corp},
			{ID: 96221075, Name: "Jakken Tsero"},
		},
		Admins: []seedAdmin{
			{CharacterID: 94067988, Role: "admin"},
			{CharacterID: 95144320, Role: "fc"},
		},
		Bans: []seedBan{
			{
				EntityID:   98754412,
				EntityName: "Red Tide Salvage",
				Category:   "Corporation",
				IssuedBy:   94067988,
				Reason:     "repeated fleet theft",
			},
		},
	}
}

func loadFixture(path string) (*seedFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx seedFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &fx, nil
}

func runSeed(fixturePath string) int {
	ctx := context.Background()

	fx := demoFixture()
	if fixturePath != "" {
		loaded, err := loadFixture(fixturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading fixture: %v\n", err)
			return 1
		}
		fx = loaded
	}

	for _, a := range fx.Admins {
		if !permissions.ValidRole(a.Role) {
			fmt.Fprintf(os.Stderr, "error: unknown role %q for character %d (roles: %s)\n",
				a.Role, a.CharacterID, strings.Join(permissions.Roles(), ", "))
			return 1
		}
	}
	for _, b := range fx.Bans {
		switch b.Category {
		case "Character", "Corporation", "Alliance":
		default:
			fmt.Fprintf(os.Stderr, "error: unknown ban category %q for entity %d\n", b.Category, b.EntityID)
			return 1
		}
	}

	pool := connect(ctx)
	defer pool.Close()

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	now := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	fmt.Println("creating characters...")
	for _, c := range fx.Characters {
		_, err = tx.Exec(ctx,
			`INSERT INTO characters (id, name, corporation_id, created_at) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.CorporationID, now,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: creating character %d: %v\n", c.ID, err)
			return 1
		}
	}

	fmt.Println("creating staff grants...")
	for _, a := range fx.Admins {
		_, err = tx.Exec(ctx,
			`INSERT INTO admins (character_id, role, granted_at, granted_by) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (character_id) DO NOTHING`,
			a.CharacterID, a.Role, now, a.GrantedBy,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: granting %s to %d: %v\n", a.Role, a.CharacterID, err)
			return 1
		}
	}

	if len(fx.Bans) > 0 {
		fmt.Println("creating bans...")
	}
	for _, b := range fx.Bans {
		_, err = tx.Exec(ctx,
			`INSERT INTO bans (id, entity_id, entity_name, entity_category, issued_at, issued_by, reason, public_reason)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			sf.Generate().Int64(), b.EntityID, b.EntityName, b.Category, now, b.IssuedBy, b.Reason, b.PublicReason,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: creating ban on %s: %v\n", b.EntityName, err)
			return 1
		}
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing transaction: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Printf("seed complete: %d characters, %d staff grants, %d bans\n",
		len(fx.Characters), len(fx.Admins), len(fx.Bans))
	return 0
}

// --- grant ---

func runGrant(idArg, role string) int {
	characterID, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid character id %q\n", idArg)
		return 1
	}
	if !permissions.ValidRole(role) {
		fmt.Fprintf(os.Stderr, "error: unknown role %q (roles: %s)\n", role, strings.Join(permissions.Roles(), ", "))
		return 1
	}

	ctx := context.Background()
	pool := connect(ctx)
	defer pool.Close()

	var name string
	err = pool.QueryRow(ctx, `SELECT name FROM characters WHERE id=$1`, characterID).Scan(&name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: character %d is not known; they must log in once first\n", characterID)
		return 1
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO admins (character_id, role, granted_at) VALUES ($1,$2,$3)
		 ON CONFLICT (character_id) DO UPDATE SET role = EXCLUDED.role, granted_at = EXCLUDED.granted_at`,
		characterID, role, time.Now(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: granting role: %v\n", err)
		return 1
	}

	fmt.Printf("granted %s to %s (%d)\n", role, name, characterID)
	return 0
}

// --- admins ---

func runAdmins() int {
	ctx := context.Background()
	pool := connect(ctx)
	defer pool.Close()

	rows, err := pool.Query(ctx,
		`SELECT a.character_id, c.name, a.role, a.granted_at
		 FROM admins a JOIN characters c ON c.id = a.character_id
		 ORDER BY a.granted_at`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: listing admins: %v\n", err)
		return 1
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id        int64
			name      string
			role      string
			grantedAt time.Time
		)
		if err := rows.Scan(&id, &name, &role, &grantedAt); err != nil {
			fmt.Fprintf(os.Stderr, "error: reading row: %v\n", err)
			return 1
		}
		fmt.Printf("%-12d %-24s %-12s %s\n", id, name, role, grantedAt.Format("2006-01-02"))
		count++
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: listing admins: %v\n", err)
		return 1
	}
	if count == 0 {
		fmt.Println("no staff grants; use 'waitlist-cli grant' or 'waitlist-cli seed'")
	}
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:8080")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}
