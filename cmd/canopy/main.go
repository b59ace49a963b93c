// Command canopy parses files with the built-in demo grammars, runs
// grammar corpora, and serves the websocket playground.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/text/encoding/unicode"

	"github.com/odvcencio/canopy"
	"github.com/odvcencio/canopy/corpus"
	"github.com/odvcencio/canopy/grammars"
	"github.com/odvcencio/canopy/web"
)

var log = commonlog.GetLogger("canopy")

func main() {
	var verbosity int

	root := &cobra.Command{
		Use:   "canopy",
		Short: "incremental GLR parsing runtime",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	root.PersistentFlags().IntVarP(&verbosity, "verbose", "v", 0, "log verbosity")

	root.AddCommand(parseCommand())
	root.AddCommand(corpusCommand())
	root.AddCommand(playCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "canopy: %v\n", err)
		os.Exit(1)
	}
}

func parseCommand() *cobra.Command {
	var language string
	var utf16Input bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "parse a file and print its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := grammars.DetectLanguage(args[0])
			if language != "" {
				var err error
				entry, err = grammars.ByName(language)
				if err != nil {
					return err
				}
			}
			if entry == nil {
				return fmt.Errorf("cannot detect language for %s, pass --language", args[0])
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var input canopy.Input
			if utf16Input {
				// Normalize any byte order and BOM, then feed the text
				// through the runtime's UTF-16 path.
				decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).
					NewDecoder().Bytes(data)
				if err != nil {
					return fmt.Errorf("decode utf-16: %w", err)
				}
				input = canopy.NewUTF16Input(string(decoded))
			} else {
				input = canopy.NewBytesInput(data)
			}

			lang := entry.Language()
			parser := canopy.NewParser(lang)
			if debug {
				parser.SetDebugger(canopy.NewLogDebugger(log))
			}

			tree := parser.Parse(input, nil)
			if tree == nil {
				return fmt.Errorf("parse failed")
			}
			fmt.Println(tree.StringWithNames(lang))
			if count := tree.ErrorCount(); count > 0 {
				log.Noticef("%d error node(s)", count)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language name (default: detect by extension)")
	cmd.Flags().BoolVar(&utf16Input, "utf16", false, "treat the file as UTF-16")
	cmd.Flags().BoolVar(&debug, "debug", false, "log parser debug events")
	return cmd
}

func corpusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "corpus [file...]",
		Short: "run grammar corpus files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failures := 0
			for _, path := range args {
				file, err := corpus.Load(path)
				if err != nil {
					return err
				}
				results, err := file.Run()
				if err != nil {
					return err
				}
				for _, result := range results {
					if result.Passed {
						fmt.Printf("ok   %s\n", result.Case.Name)
						continue
					}
					failures++
					fmt.Printf("FAIL %s\n  want: %s\n  got:  %s\n",
						result.Case.Name, result.Case.Output, result.Actual)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d case(s) failed", failures)
			}
			return nil
		},
	}
}

func playCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "serve the websocket playground",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := web.NewServer(commonlog.GetLogger("canopy.web"))
			log.Noticef("playground listening on %s", addr)
			return http.ListenAndServe(addr, server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8790", "listen address")
	return cmd
}
