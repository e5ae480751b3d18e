package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/ogunkayacan/lisans/core/license"
)

// genKey derives and prints the key for the given expiry date.
func (cli *commandLine) genKey(year, month, day int) error {
	date, err := license.NewExpiryDate(year, month, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Expiry date: %s\nLicense key: %s\n", date, cli.keygen.GenerateKey(date))
	return nil
}

// genKeyInteractive prompts for expiry dates in a loop, re-asking on invalid
// input, until the operator declines to generate another key.
func (cli *commandLine) genKeyInteractive() error {
	scanner := bufio.NewScanner(cli.in)

	for {
		year, ok := cli.promptInt(scanner, fmt.Sprintf("Expiry year (%d-%d): ", license.MinYear, license.MaxYear))
		if !ok {
			return nil
		}
		month, ok := cli.promptInt(scanner, "Expiry month (1-12): ")
		if !ok {
			return nil
		}
		day, ok := cli.promptInt(scanner, "Expiry day (1-31): ")
		if !ok {
			return nil
		}

		if err := cli.genKey(year, month, day); err != nil {
			fmt.Fprintf(cli.out, "error: %s\n", err)
		}

		fmt.Fprint(cli.out, "Generate another key? [y/N]: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ans := strings.ToLower(strings.TrimSpace(scanner.Text())); ans != "y" && ans != "yes" {
			return nil
		}
	}
}

// promptInt re-prompts until a number is entered; ok is false when input is exhausted.
func (cli *commandLine) promptInt(scanner *bufio.Scanner, prompt string) (int, bool) {
	for {
		fmt.Fprint(cli.out, prompt)
		if !scanner.Scan() {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(cli.out, "please enter a number")
			continue
		}
		return n, true
	}
}
