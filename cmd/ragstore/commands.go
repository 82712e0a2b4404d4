package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

func (c *cli) idsCmd() *cobra.Command {
	var filter []string
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "List stored file ids",
		Long: `List the distinct file ids in the collection.

Examples:
  # All ids
  ragstore ids

  # Which of these ids exist
  ragstore ids --filter a,b,c`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd, func(ctx context.Context, store vectordb.Store) error {
				var (
					ids []string
					err error
				)
				if cmd.Flags().Changed("filter") {
					ids, err = store.GetFilteredIDs(ctx, filter)
				} else {
					ids, err = store.GetAllIDs(ctx)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ids)
			})
		},
	}
	cmd.Flags().StringSliceVar(&filter, "filter", nil, "only report these ids if present (comma separated)")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>...",
		Short: "Print the documents stored under file ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, store vectordb.Store) error {
				docs, err := store.GetDocumentsByIDs(ctx, args)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), docs)
			})
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete every chunk stored under file ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, store vectordb.Store) error {
				if err := store.Delete(ctx, args); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %d id(s)\n", len(args))
				return err
			})
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var (
		id      string
		content string
		entries []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Embed and store one document",
		Long: `Embed a document and store it under a file id.

Metadata values are typed: integers, floats and true/false are stored as
such, everything else as a string.

Examples:
  ragstore add --id doc-1 --content "hello world" --meta lang=en --meta page=3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meta, err := parseMeta(entries)
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(ctx context.Context, store vectordb.Store) error {
				doc := vectordb.Document{Content: content, Metadata: meta}
				ids, err := store.AddDocuments(ctx, []vectordb.Document{doc}, []string{id})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ids)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "file_id of the document")
	cmd.Flags().StringVar(&content, "content", "", "document text")
	cmd.Flags().StringArrayVar(&entries, "meta", nil, "metadata entry key=value (repeatable)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		query     string
		k         int
		rawFilter string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Similarity search",
		Long: `Embed a query and print the closest documents with their scores.

Examples:
  ragstore search --query "refund policy" -k 3
  ragstore search --query "refund policy" --filter '{"must":[{"field":"lang","equalTo":"en"}]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if k < 1 {
				return fmt.Errorf("-k must be at least 1, got %d", k)
			}
			filter, err := parseFilter(rawFilter)
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(ctx context.Context, store vectordb.Store) error {
				hits, err := store.SimilaritySearchWithScore(ctx, query, k, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), hits)
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "query text")
	cmd.Flags().IntVarP(&k, "k", "k", 4, "number of results")
	cmd.Flags().StringVar(&rawFilter, "filter", "", "filter set as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

// parseMeta turns key=value entries into metadata.
func parseMeta(entries []string) (map[string]any, error) {
	meta := make(map[string]any, len(entries))
	for _, e := range entries {
		key, value, ok := strings.Cut(e, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta %q: expected key=value", e)
		}
		if key == vectordb.FileIDKey {
			return nil, fmt.Errorf("invalid --meta %q: %s is set from --id", e, vectordb.FileIDKey)
		}
		meta[key] = typedValue(value)
	}
	return meta, nil
}

func typedValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func parseFilter(raw string) (*vectordb.FilterSet, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var fs vectordb.FilterSet
	if err := json.Unmarshal([]byte(raw), &fs); err != nil {
		return nil, fmt.Errorf("invalid --filter: %w", err)
	}
	return &fs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
