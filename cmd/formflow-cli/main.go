// Command formflow-cli validates form configuration files and can print the
// rendered HTML for a chosen step.
//
//	formflow-cli validate form.yaml
//	formflow-cli render -step 2 form.yaml
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/config"
	"github.com/goliatone/go-formflow/pkg/store"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "validate":
		if len(args) < 1 {
			usage()
			os.Exit(2)
		}
		os.Exit(runValidate(args[0]))
	case "render":
		flags := flag.NewFlagSet("render", flag.ExitOnError)
		step := flags.Int("step", 1, "step to render")
		if err := flags.Parse(args); err != nil {
			os.Exit(2)
		}
		if flags.NArg() < 1 {
			usage()
			os.Exit(2)
		}
		os.Exit(runRender(flags.Arg(0), *step))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: formflow-cli validate <config-file>")
	fmt.Fprintln(os.Stderr, "       formflow-cli render [-step N] <config-file>")
}

func runValidate(path string) int {
	cfg, err := config.LoadFile(path)
	if err != nil {
		var iss config.Issues
		if errors.As(err, &iss) {
			for _, issue := range iss {
				log.Printf("%s: %s", issue.Path, issue.Message)
			}
			return 1
		}
		log.Printf("error: %v", err)
		return 1
	}
	log.Printf("%s: valid (%d steps, %d fields)", cfg.ID, len(cfg.Steps), len(cfg.Fields()))
	return 0
}

func runRender(path string, step int) int {
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Printf("error: %v", err)
		return 1
	}

	st := store.New()
	st.InitializeForm(cfg.ID, cfg, nil)
	st.SetStep(step)

	result, err := formflow.NewRenderer().RenderStep(st.Snapshot())
	if err != nil {
		log.Printf("error: %v", err)
		return 1
	}
	for _, diag := range result.Diagnostics {
		log.Printf("warning: %s: %s", diag.Path, diag.Message)
	}
	os.Stdout.Write(result.HTML)
	return 0
}
