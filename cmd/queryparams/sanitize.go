package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/queryparams/internal/errors"
	"github.com/vango-dev/queryparams/pkg/queryparams"
	"github.com/vango-dev/queryparams/pkg/session"
)

func sanitizeCmd() *cobra.Command {
	var (
		previous string
		trace    bool
	)

	cmd := &cobra.Command{
		Use:   "sanitize [key=value ...]",
		Short: "Print the canonical query string for a set of params",
		Long: `Apply key=value params to an empty store bound to a session whose
current query string is --previous, and print the query string that
would be pushed to the browser.

Repeating a key stores a list. "key=" stores an empty string; "key[]="
stores an empty list. Embed-only params (embed, embed_options) are
dropped from the arguments and taken from --previous instead.

Examples:
  queryparams sanitize page=2 tags=go tags=web
  queryparams sanitize --previous "embed=true" page=2
  queryparams sanitize --trace a=1 b=2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, order, err := parseParams(args)
			if err != nil {
				return err
			}

			sess := session.New(session.WithQueryString(previous))
			params := queryparams.New(queryparams.WithSession(sess))
			for _, key := range order {
				if err := params.Set(key, values[key]); err != nil {
					return errors.New("E300").Wrap(err)
				}
			}

			out := cmd.OutOrStdout()
			if trace {
				for i, msg := range sess.Drain() {
					fmt.Fprintf(out, "%d: %s\n", i+1, msg)
				}
				return nil
			}
			fmt.Fprintln(out, sess.QueryString())
			return nil
		},
	}

	cmd.Flags().StringVar(&previous, "previous", "", "Query string currently shown in the browser")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print every published notification instead of the final string")

	return cmd
}

// parseParams turns key=value arguments into tagged values, keeping the
// order in which keys first appear.
func parseParams(args []string) (map[string]queryparams.Value, []string, error) {
	lists := make(map[string][]string)
	multi := make(map[string]bool)
	var order []string

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, nil, errors.New("E200").
				WithDetail(fmt.Sprintf("argument %q is not key=value", arg)).
				WithSuggestion("Write params as page=2")
		}
		emptyList := strings.HasSuffix(key, "[]")
		key = strings.TrimSuffix(key, "[]")
		if _, seen := lists[key]; !seen {
			order = append(order, key)
			lists[key] = []string{}
		}
		if emptyList {
			multi[key] = true
			continue
		}
		lists[key] = append(lists[key], value)
		if len(lists[key]) > 1 {
			multi[key] = true
		}
	}

	values := make(map[string]queryparams.Value, len(lists))
	for key, vs := range lists {
		if multi[key] {
			values[key] = queryparams.Multi(vs...)
		} else {
			values[key] = queryparams.Single(vs[0])
		}
	}
	return values, order, nil
}
