// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"litreview/internal/middleware"
	"litreview/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "Read3r-Passw0rd!"

// Plan describes how much data a seed run creates.
type Plan struct {
	Users            int     `yaml:"users"`
	FollowsPerUser   int     `yaml:"follows_per_user"`
	BlockRatio       float64 `yaml:"block_ratio"`
	TicketsPerUser   int     `yaml:"tickets_per_user"`
	ReviewsPerTicket int     `yaml:"reviews_per_ticket"`
	MaxDays          int     `yaml:"max_days"`
}

// Presets are the built-in plans selectable by name.
var Presets = map[string]Plan{
	"small": {Users: 5, FollowsPerUser: 2, BlockRatio: 0, TicketsPerUser: 2, ReviewsPerTicket: 1, MaxDays: 14},
	"demo":  {Users: 20, FollowsPerUser: 6, BlockRatio: 0.1, TicketsPerUser: 4, ReviewsPerTicket: 2, MaxDays: 60},
	"large": {Users: 500, FollowsPerUser: 40, BlockRatio: 0.05, TicketsPerUser: 10, ReviewsPerTicket: 3, MaxDays: 365},
}

// PresetNames lists the built-in plan names in order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks plan bounds.
func (p Plan) Validate() error {
	switch {
	case p.Users < 1:
		return errors.New("plan needs at least one user")
	case p.FollowsPerUser < 0 || p.TicketsPerUser < 0 || p.ReviewsPerTicket < 0:
		return errors.New("plan counts must not be negative")
	case p.BlockRatio < 0 || p.BlockRatio > 1:
		return errors.New("block_ratio must be between 0 and 1")
	case p.MaxDays < 0:
		return errors.New("max_days must not be negative")
	}
	return nil
}

// ParsePlan decodes a YAML plan.
func ParsePlan(data []byte) (Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("parse seed plan: %w", err)
	}
	return plan, plan.Validate()
}

// LoadPlan resolves a preset name, or reads a YAML plan file when name is not a preset.
func LoadPlan(name string) (Plan, error) {
	if plan, ok := Presets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return plan, nil
	}
	data, err := os.ReadFile(name) // #nosec G304: operator supplied path
	if err != nil {
		return Plan{}, fmt.Errorf("unknown preset %q (want %s or a YAML file): %w",
			name, strings.Join(PresetNames(), ", "), err)
	}
	return ParsePlan(data)
}

// Options configuration for the seeder
type Options struct {
	Password string
	// FastHash uses bcrypt.MinCost so large plans finish quickly.
	FastHash bool
	DryRun   bool
	RandSeed int64
}

func (o Options) withDefaults() Options {
	if o.Password == "" {
		o.Password = DefaultPassword
	}
	if o.RandSeed == 0 {
		o.RandSeed = time.Now().UnixNano()
	}
	return o
}

func hashPassword(password string, fast bool) (string, error) {
	cost := bcrypt.DefaultCost
	if fast {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	return string(hash), nil
}

// Result counts what a run created.
type Result struct {
	Users   []*models.User
	Follows int
	Blocked int
	Tickets int
	Reviews int
}

// Run executes plan against db.
func Run(ctx context.Context, db *gorm.DB, plan Plan, opts Options) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if db != nil {
		db = db.WithContext(ctx)
	}
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "seeding started",
		slog.Int("users", plan.Users), slog.Bool("dry_run", f.opts.DryRun))

	res := &Result{Users: make([]*models.User, 0, plan.Users)}
	for i := 0; i < plan.Users; i++ {
		user, err := f.CreateUser(i + 1)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		res.Users = append(res.Users, user)
	}

	follows := min(plan.FollowsPerUser, len(res.Users)-1)
	for i, follower := range res.Users {
		for _, j := range f.others(i, len(res.Users), follows) {
			blocked := f.rng.Float64() < plan.BlockRatio
			if _, err := f.CreateFollow(follower, res.Users[j], blocked); err != nil {
				return nil, fmt.Errorf("create follow: %w", err)
			}
			res.Follows++
			if blocked {
				res.Blocked++
			}
		}
	}

	reviewers := min(plan.ReviewsPerTicket, len(res.Users)-1)
	for i, author := range res.Users {
		for k := 0; k < plan.TicketsPerUser; k++ {
			ticket, err := f.CreateTicket(author, plan.MaxDays)
			if err != nil {
				return nil, fmt.Errorf("create ticket: %w", err)
			}
			res.Tickets++

			for _, j := range f.others(i, len(res.Users), reviewers) {
				if _, err := f.CreateReview(res.Users[j], ticket); err != nil {
					return nil, fmt.Errorf("create review: %w", err)
				}
				res.Reviews++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding completed",
		slog.Int("users", len(res.Users)),
		slog.Int("follows", res.Follows),
		slog.Int("blocked", res.Blocked),
		slog.Int("tickets", res.Tickets),
		slog.Int("reviews", res.Reviews),
	)
	return res, nil
}

// others picks n distinct indexes in [0, total) other than self.
func (f *Factory) others(self, total, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, n)
	for _, j := range f.rng.Perm(total) {
		if j == self {
			continue
		}
		out = append(out, j)
		if len(out) == n {
			break
		}
	}
	return out
}

// Clean removes all seeded content. Child rows go first so it works without cascades.
func Clean(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Review{}, &models.Ticket{}, &models.Photo{}, &models.FollowEdge{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clean %T: %w", model, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "existing data cleared")
	return nil
}
