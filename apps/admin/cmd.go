package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/ogunkayacan/lisans/core/license"
	"github.com/ogunkayacan/lisans/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sqlx.DB
	usrRepo user.Repository
	keygen  license.Keygen

	in  io.Reader
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  genkey [-year YEAR -month MONTH -day DAY] - generate a license key; prompts interactively when no flags are given")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-email EMAIL] [-fullname NAME] [-admin] - add or update a user; the password will be prompted next")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a database migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	genKeyCmd := flag.NewFlagSet("genkey", flag.ExitOnError)
	genKeyYear := genKeyCmd.Int("year", 0, "The expiry year (2024-2100).")
	genKeyMonth := genKeyCmd.Int("month", 0, "The expiry month (1-12).")
	genKeyDay := genKeyCmd.Int("day", 0, "The expiry day (1-31).")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email address.")
	addUserFullName := addUserCmd.String("fullname", "", "The user's full name.")
	addUserIsAdmin := addUserCmd.Bool("admin", false, "Make the user an admin.")

	switch args[1] {
	case "genkey":
		if err := genKeyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *genKeyYear == 0 && *genKeyMonth == 0 && *genKeyDay == 0 {
			return cli.genKeyInteractive()
		}
		return cli.genKey(*genKeyYear, *genKeyMonth, *genKeyDay)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, *addUserFullName, string(pwd), *addUserIsAdmin)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
