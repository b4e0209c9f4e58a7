package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	beanjson "github.com/reoring/beanjson"
	jpdriver "github.com/reoring/beanjson/source/jsonparser"
	yamldriver "github.com/reoring/beanjson/source/yaml"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "fmt":
		fmtCmd(os.Args[2:])
	case "check":
		checkCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "beanjson CLI\n\nUsage:\n  beanjson fmt [-dialect strict|relaxed|minimal] [-driver json|jsonparser|yaml] [-flat] [-indent STR] [file]\n  beanjson check [-driver json|jsonparser|yaml] [file]\n\nWith no file, input is read from stdin.")
}

func fmtCmd(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	dialectName := fs.String("dialect", "strict", "output dialect: strict, relaxed or minimal")
	driverName := fs.String("driver", "json", "input driver: json, jsonparser or yaml")
	flat := fs.Bool("flat", false, "keep containers without nested containers on one line")
	indent := fs.String("indent", "\t", "indentation unit")
	_ = fs.Parse(args)

	n, err := parseInput(fs.Args(), *driverName)
	if err != nil {
		fatal(err)
	}
	dialect, err := parseDialect(*dialectName)
	if err != nil {
		fatal(err)
	}
	fmt.Println(beanjson.PrettyPrintNode(n, beanjson.PrettyOptions{
		Dialect:       dialect,
		FlatOnOneLine: *flat,
		Indent:        *indent,
	}))
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	driverName := fs.String("driver", "json", "input driver: json, jsonparser or yaml")
	_ = fs.Parse(args)

	if _, err := parseInput(fs.Args(), *driverName); err != nil {
		fatal(err)
	}
	fmt.Println("ok")
}

func parseInput(args []string, driverName string) (*beanjson.Node, error) {
	driver, err := parseDriver(driverName)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return driver.ParseBytes(data)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return driver.Parse(f)
}

func parseDialect(name string) (beanjson.Dialect, error) {
	switch name {
	case "strict":
		return beanjson.Strict, nil
	case "relaxed":
		return beanjson.RelaxedNames, nil
	case "minimal":
		return beanjson.Minimal, nil
	}
	return beanjson.Strict, fmt.Errorf("unknown dialect: %s", name)
}

func parseDriver(name string) (beanjson.Driver, error) {
	switch name {
	case "json":
		return beanjson.DefaultDriver(), nil
	case "jsonparser":
		return jpdriver.Driver(), nil
	case "yaml":
		return yamldriver.Driver(), nil
	}
	return nil, fmt.Errorf("unknown driver: %s", name)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "beanjson:", err)
	os.Exit(1)
}
