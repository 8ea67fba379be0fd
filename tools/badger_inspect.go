// Command badger_inspect prints the stored direct messages as a table.
package main

import (
	"direct-chat/domain"
	"direct-chat/repositories"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

const (
	defaultDBPath   = "data/badger"
	maxContentWidth = 48
)

func main() {
	dbPath := flag.String("db", defaultDBPath, "Path to badger DB")
	user := flag.String("user", "", "Only show conversations involving this user id")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "ID", "Timestamp", "Sender", "Receiver", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = repositories.WalkMessages(db, func(key string, message domain.Message) error {
		if *user != "" && message.Sender != *user && message.Receiver != *user {
			return nil
		}
		table.Append(row(key, message))
		count++
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
	fmt.Printf("%d message(s)\n", count)
}

func row(key string, message domain.Message) []string {
	return []string{
		key,
		strconv.FormatUint(message.ID, 10),
		message.Timestamp.Format("2006-01-02 15:04:05"),
		shortID(message.Sender),
		shortID(message.Receiver),
		truncate(message.Content, maxContentWidth),
	}
}

// shortID keeps the first 8 characters of an id for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
