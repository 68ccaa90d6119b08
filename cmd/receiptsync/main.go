// Command receiptsync downloads Qonto transaction attachments into a local
// directory, a Google Drive folder, or an S3-compatible bucket.
package main

import (
	"os"

	"github.com/custodia-labs/receiptsync/internal/adapters/driving/cli"
)

func main() {
	os.Exit(cli.Execute())
}
