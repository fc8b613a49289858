// Package admin implements the operator commands of budgetkeeper: applying
// migrations, creating an administrator and listing roles.
package admin

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/server"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/services"
)

const usage = `usage: budgetkeeper-admin <command> [flags]

commands:
  migrate        apply pending database migrations
  create-admin   create a user holding the admin role
  roles          list active roles
`

var ErrUnknownCommand = errors.New("unknown command")

type Admin struct {
	config *config.Config
	in     *bufio.Reader
	out    io.Writer
}

func New(c *config.Config, in io.Reader, out io.Writer) *Admin {
	return &Admin{config: c, in: bufio.NewReader(in), out: out}
}

// Run executes the named command.
func (a *Admin) Run(ctx context.Context, command string) error {
	switch command {
	case "migrate":
		return a.withDB(ctx, func(*sql.DB, repomanager.RepositoryManager) error {
			_, err := fmt.Fprintln(a.out, "Migrations applied")
			return err
		})
	case "create-admin":
		return a.withDB(ctx, func(db *sql.DB, rm repomanager.RepositoryManager) error {
			return a.createAdmin(ctx, db, rm)
		})
	case "roles":
		return a.withDB(ctx, func(db *sql.DB, rm repomanager.RepositoryManager) error {
			return a.listRoles(ctx, db, rm)
		})
	case "", "help":
		_, err := fmt.Fprint(a.out, usage)
		return err
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// withDB opens and migrates the database for the duration of fn.
func (a *Admin) withDB(ctx context.Context, fn func(*sql.DB, repomanager.RepositoryManager) error) error {
	db, rm, err := server.OpenDatabase(ctx, a.config)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, rm)
}

func (a *Admin) createAdmin(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
	email, err := GetSimpleText(a.in, "Admin email", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)
	if string(pw) != string(confirm) {
		return errors.New("passwords do not match")
	}

	roles := services.NewRoleService(db, rm)
	if err := roles.EnsureDefaults(ctx); err != nil {
		return err
	}

	active, err := roles.FindAll(ctx, false)
	if err != nil {
		return err
	}
	var roleIDs []string
	for _, r := range active {
		if r.Name == common.RoleAdmin || r.Name == common.RoleUser {
			roleIDs = append(roleIDs, r.ID)
		}
	}
	if len(roleIDs) == 0 {
		return fmt.Errorf("role %q is not active", common.RoleAdmin)
	}

	users := services.NewUserService(db, rm, a.config)
	u, err := users.Create(ctx, services.CreateUserInput{
		Email:             email,
		Password:          string(pw),
		PasswordConfirmed: string(confirm),
	})
	if err != nil {
		return fmt.Errorf("create user: %s", common.Message(err))
	}

	if _, err := users.SetRoles(ctx, u.ID, roleIDs); err != nil {
		return fmt.Errorf("assign roles: %s", common.Message(err))
	}

	_, err = fmt.Fprintf(a.out, "Created admin %s (%s)\n", u.Email, u.ID)
	return err
}

func (a *Admin) listRoles(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
	roles, err := services.NewRoleService(db, rm).FindAll(ctx, false)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tDESCRIPTION")
	for _, r := range roles {
		desc := ""
		if r.Description != nil {
			desc = *r.Description
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.ID, desc)
	}
	return tw.Flush()
}
