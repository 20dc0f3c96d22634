// Command admin bootstraps identities directly in the database, typically
// the first administrator:
//
//	admin -name Root -email root@example.com [-role admin] [-d DSN]
//
// The password is prompted for without echo, or read from stdin when piped.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/prompt"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

type options struct {
	name  string
	email string
	role  string
}

func parseOptions(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.name, "name", "", "display name")
	fs.StringVar(&opts.email, "email", "", "email address")
	fs.StringVar(&opts.role, "role", models.RoleAdmin.String(), "role (user, admin)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-name", "-email", "-role"})); err != nil {
		return nil, err
	}
	return opts, nil
}

// UserCreator is the slice of the user service the tool needs.
type UserCreator interface {
	CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.PublicUser, error)
}

// run asks for whatever the flags left out, then creates the identity.
func run(ctx context.Context, opts *options, users UserCreator, in *bufio.Reader, out io.Writer,
	password func(*bufio.Reader, string, io.Writer) ([]byte, error)) error {
	role, err := models.ParseRole(opts.role)
	if err != nil {
		return err
	}

	if opts.name == "" {
		if opts.name, err = prompt.Text(in, "Name", out); err != nil {
			return err
		}
	}
	if opts.email == "" {
		if opts.email, err = prompt.Text(in, "Email", out); err != nil {
			return err
		}
	}

	pw, err := password(in, "Password", out)
	if err != nil {
		return err
	}
	// clears the prompt buffer only; the string copy below is not wiped
	defer common.WipeByteArray(pw)

	u, err := users.CreateUser(ctx, opts.name, opts.email, string(pw), role)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created %s %s (%s)\n", u.Role, u.Email, u.ID)
	return nil
}

func main() {
	ctx := context.Background()

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.LoadConfig()

	db, err := dbx.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err == nil {
		err = rm.RunMigrations(ctx, db)
	}
	if err == nil {
		users := services.NewUserService(rm, auth.NewBcryptHasher(cfg.BcryptCost))
		err = run(ctx, opts, users, bufio.NewReader(os.Stdin), os.Stdout, prompt.Password)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		db.Close()
		os.Exit(1)
	}
}
