package db

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ByAlphas/BigBaseAlpha-sub000/cmd/util"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/store"
	"github.com/spf13/cobra"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [collection]",
		Short: "Creates a collection, optionally with a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var schema document.Schema
			if raw, _ := cmd.Flags().GetString("schema"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &schema); err != nil {
					return fmt.Errorf("invalid schema: %w", err)
				}
			}

			if err := st.CreateCollection(args[0], schema); err != nil {
				return err
			}

			fmt.Println("created successfully")
			return nil
		},
	}

	collectionsCmd = &cobra.Command{
		Use:   "collections",
		Short: "Lists all collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := st.Collections()
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	insertCmd = &cobra.Command{
		Use:   "insert [collection] [document]",
		Short: "Inserts a JSON document into a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc document.Document
			if err := json.Unmarshal([]byte(args[1]), &doc); err != nil {
				return fmt.Errorf("invalid document: %w", err)
			}

			stored, err := st.Insert(args[0], doc)
			if err != nil {
				return err
			}

			return printJSON(stored)
		},
	}

	getCmd = &cobra.Command{
		Use:   "get [collection] [id]",
		Short: "Looks up a single document by its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, found, err := st.FindByID(args[0], args[1])
			if err != nil {
				return err
			}

			if !found {
				fmt.Printf("id=%s, found=%v\n", args[1], found)
				return nil
			}
			return printJSON(doc)
		},
	}

	updateCmd = &cobra.Command{
		Use:   "update [collection] [id] [patch]",
		Short: "Merges a JSON patch into an existing document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch document.Document
			if err := json.Unmarshal([]byte(args[2]), &patch); err != nil {
				return fmt.Errorf("invalid patch: %w", err)
			}

			updated, err := st.Update(args[0], args[1], patch)
			if err != nil {
				return err
			}

			return printJSON(updated)
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete [collection] [id]",
		Short: "Deletes a document by its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := st.Delete(args[0], args[1])
			if err != nil {
				return err
			}

			if removed {
				fmt.Println("deleted successfully")
			} else {
				fmt.Printf("id=%s, found=%v\n", args[1], removed)
			}
			return nil
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query [collection] [query]",
		Short: "Runs a declarative query against a collection",
		Long: util.WrapString("Runs a declarative query against a collection. " +
			"The query is a single JSON object with the optional keys " +
			"filter, sort, offset, limit and projection, e.g. " +
			`'{"filter":{"age":{"$gte":18}},"sort":[{"field":"age","desc":true}],"limit":10}'. ` +
			"Without a query argument all documents are returned."),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var q store.Query
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &q); err != nil {
					return fmt.Errorf("invalid query: %w", err)
				}
			}

			docs, err := st.Query(args[0], q)
			if err != nil {
				return err
			}

			return printJSON(docs)
		},
	}

	indexCmd = &cobra.Command{
		Use:   "index [collection] [field]",
		Short: "Creates (or with --drop removes) a secondary index on a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if drop, _ := cmd.Flags().GetBool("drop"); drop {
				dropped, err := st.DropIndex(args[0], args[1])
				if err != nil {
					return err
				}

				if dropped {
					fmt.Println("dropped successfully")
				} else {
					fmt.Printf("field=%s, indexed=%v\n", args[1], dropped)
				}
				return nil
			}

			created, err := st.CreateIndex(args[0], args[1])
			if err != nil {
				return err
			}

			if created {
				fmt.Println("created successfully")
			} else {
				fmt.Println("index already exists")
			}
			return nil
		},
	}

	indexesCmd = &cobra.Command{
		Use:   "indexes [collection]",
		Short: "Lists the indexed fields of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := st.Indexes(args[0])
			if err != nil {
				return err
			}

			for _, field := range fields {
				fmt.Println(field)
			}
			return nil
		},
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints store statistics or Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if metrics, _ := cmd.Flags().GetBool("metrics"); metrics {
				st.WriteMetrics(os.Stdout)
				return nil
			}

			stats, err := st.Stats()
			if err != nil {
				return err
			}

			return printJSON(stats)
		},
	}
)

func init() {
	createCmd.Flags().String("schema", "", util.WrapString("Optional JSON schema the collection validates documents against, e.g. '{\"name\":{\"type\":\"string\",\"required\":true}}'"))
	indexCmd.Flags().Bool("drop", false, util.WrapString("Drop the index instead of creating it"))
	statsCmd.Flags().Bool("metrics", false, util.WrapString("Print Prometheus text format metrics instead of the stats summary"))
}

// printJSON renders a value as indented JSON on stdout
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
