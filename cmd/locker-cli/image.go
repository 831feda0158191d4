package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/locker/clientcli"
)

var fetchOutput string

var uploadImageCmd = &cobra.Command{
	Use:   "upload-image <prefix> <file>",
	Short: "Upload an image",
	Long: `Upload an image (jpg, jpeg, png, gif, webp, svg, heif, heic, ico)
under an alphanumeric prefix. The server picks the file name. The printed
object key and URL can be shared: images are readable without a token.

Examples:
  locker-cli upload-image avatars ./me.png
  locker-cli upload-image -q blog ./header.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runUploadImage,
}

var fetchImageCmd = &cobra.Command{
	Use:   "fetch-image <object-key>",
	Short: "Download an image",
	Long: `Download an image by object key. No login is needed.

Examples:
  locker-cli fetch-image alice/images/avatars/3f2a9c1d0b7e4a55.png
  locker-cli fetch-image alice/images/avatars/3f2a9c1d0b7e4a55.png -o me.png
  locker-cli fetch-image alice/images/avatars/3f2a9c1d0b7e4a55.png -o - > me.png`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchImage,
}

func init() {
	fetchImageCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "local path, - for stdout (default: base name of the key)")
}

func runUploadImage(cmd *cobra.Command, args []string) error {
	client, err := getAuthClient()
	if err != nil {
		return err
	}

	result, err := client.UploadImage(cmd.Context(), clientcli.UploadImageOptions{
		Prefix:    args[0],
		LocalPath: args[1],
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatUploadImage(os.Stdout, result)
}

func runFetchImage(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, body, err := client.FetchImage(cmd.Context(), clientcli.FetchImageOptions{
		ObjectKey: args[0],
		LocalPath: fetchOutput,
	})
	if err != nil {
		return err
	}

	if body != nil {
		defer func() { _ = body.Close() }()
		if _, err := io.Copy(os.Stdout, body); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	}

	return getFormatter().FormatFetchImage(os.Stdout, result)
}
