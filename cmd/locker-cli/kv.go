package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/locker/clientcli"
)

var putFile string

var putCmd = &cobra.Command{
	Use:   "put <key> [content]",
	Short: "Store a value",
	Long: `Store text under a key, replacing any previous value.

The value comes from the content argument, from --file, or from stdin.

Examples:
  locker-cli put notes/todo.txt "buy milk"
  locker-cli put settings.json --file ./settings.json
  date | locker-cli put last-run`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored value",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key> [key...]",
	Short: "Delete stored values",
	Long: `Delete one or more keys. Deleting a key that does not exist succeeds.

Examples:
  locker-cli delete notes/todo.txt
  locker-cli delete a b c`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

var etagCmd = &cobra.Command{
	Use:   "etag <key>",
	Short: "Print the etag of a stored value",
	Long: `Print the etag of a key without fetching its value. The etag changes
on every write, so it can be used to detect updates.`,
	Args: cobra.ExactArgs(1),
	RunE: runEtag,
}

func init() {
	putCmd.Flags().StringVarP(&putFile, "file", "f", "", "read the value from a file")
}

func readPutContent(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) == 2 && putFile != "":
		return "", fmt.Errorf("give either a content argument or --file, not both")
	case len(args) == 2:
		return args[1], nil
	case putFile != "":
		data, err := os.ReadFile(putFile) //#nosec G304 -- path is user-provided input
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}

func runPut(cmd *cobra.Command, args []string) error {
	content, err := readPutContent(cmd, args)
	if err != nil {
		return err
	}

	client, err := getAuthClient()
	if err != nil {
		return err
	}

	result, err := client.Put(cmd.Context(), args[0], content)
	if err != nil {
		return err
	}

	return getFormatter().FormatPut(os.Stdout, result)
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := getAuthClient()
	if err != nil {
		return err
	}

	result, err := client.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return getFormatter().FormatGet(os.Stdout, result)
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getAuthClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Keys: args})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}

func runEtag(cmd *cobra.Command, args []string) error {
	client, err := getAuthClient()
	if err != nil {
		return err
	}

	result, err := client.Etag(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := getFormatter().FormatEtag(os.Stdout, result); err != nil {
		return err
	}

	if !result.Found {
		return &exitError{code: 1}
	}
	return nil
}
