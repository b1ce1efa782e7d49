// Command nedb-cli is a small operator front-end over an in-memory nedb
// store: each subcommand loads the collection from a JSON lines file,
// runs one insert, find or count against it, or dumps its contents to
// stdout. Inserted documents are printed but not written back to the file.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nedbgo/nedb"
)

var (
	cfgFile    string
	dbPath     string
	collection string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nedb-cli",
		Short: "Inspect and mutate an nedb collection from the command line",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.nedb-cli.yaml)")
	root.PersistentFlags().StringVar(&dbPath, "file", "", "JSON-lines file backing the collection")
	root.PersistentFlags().StringVar(&collection, "collection", "default", "collection name")
	cobra.OnInitialize(initConfig)

	root.AddCommand(newInsertCmd(), newFindCmd(), newCountCmd(), newDumpCmd())
	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".nedb-cli")
		}
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	if dbPath == "" {
		dbPath = viper.GetString("file")
	}
}

func newLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openCollection loads every JSON document in dbPath (one per line, empty
// lines skipped) into a fresh in-memory collection.
func openCollection() (*nedb.Collection, func(), error) {
	logger := newLogger()
	db := nedb.NewDatabase(nedb.Options{Logger: logger})
	coll := db.Collection(collection)

	if dbPath != "" {
		if f, err := os.Open(dbPath); err == nil {
			defer f.Close()
			dec := json.NewDecoder(f)
			for dec.More() {
				var doc nedb.Doc
				if err := dec.Decode(&doc); err != nil {
					return nil, nil, fmt.Errorf("decoding %s: %w", dbPath, err)
				}
				if _, err := coll.Insert(doc); err != nil {
					logger.Warn("skipping document on load", zap.Error(err))
				}
			}
		}
	}

	return coll, func() { _ = logger.Sync() }, nil
}

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert [json]",
		Short: "Insert a single JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, cleanup, err := openCollection()
			if err != nil {
				return err
			}
			defer cleanup()

			var doc nedb.Doc
			if err := json.Unmarshal([]byte(args[0]), &doc); err != nil {
				return fmt.Errorf("parsing document: %w", err)
			}
			inserted, err := coll.Insert(doc)
			if err != nil {
				return err
			}
			return printJSON(inserted)
		},
	}
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [json-query]",
		Short: "Find documents matching a query (default: all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, cleanup, err := openCollection()
			if err != nil {
				return err
			}
			defer cleanup()

			query := nedb.Doc{}
			if len(args) == 1 {
				if err := json.Unmarshal([]byte(args[0]), &query); err != nil {
					return fmt.Errorf("parsing query: %w", err)
				}
			}
			docs, err := coll.Find(query).All()
			if err != nil {
				return err
			}
			return printJSON(docs)
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count [json-query]",
		Short: "Count documents matching a query (default: all)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, cleanup, err := openCollection()
			if err != nil {
				return err
			}
			defer cleanup()

			query := nedb.Doc{}
			if len(args) == 1 {
				if err := json.Unmarshal([]byte(args[0]), &query); err != nil {
					return fmt.Errorf("parsing query: %w", err)
				}
			}
			n, err := coll.Count(query)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every document in the collection as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, cleanup, err := openCollection()
			if err != nil {
				return err
			}
			defer cleanup()

			docs, err := coll.Find(nil).All()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			for _, d := range docs {
				if err := enc.Encode(d); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
