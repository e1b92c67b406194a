package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prantlf/litevec/internal/vecdb"
)

// --- collections ---

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage vector collections",
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		dimension, _ := cmd.Flags().GetInt("dimension")
		distance, _ := cmd.Flags().GetString("distance")
		if dimension <= 0 {
			return fmt.Errorf("--dimension is required and must be positive")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/collections/"+name, map[string]any{
			"dimension": dimension,
			"distance":  distance,
		})
		if err != nil {
			return err
		}

		var info collectionInfo
		if err := decodeJSON(resp, &info); err != nil {
			printError("creating collection: %v", err)
			return err
		}

		printSuccess("Created collection %s (dimension=%d, distance=%s)", info.Name, info.Dimension, info.Distance)
		return nil
	},
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collection names",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/collections")
		if err != nil {
			return err
		}

		var names []string
		if err := decodeJSON(resp, &names); err != nil {
			printError("listing collections: %v", err)
			return err
		}

		if len(names) == 0 {
			fmt.Println("No collections found.")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var collectionsInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show collection info",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/collections/"+args[0])
		if err != nil {
			return err
		}

		var info collectionInfo
		if err := decodeJSON(resp, &info); err != nil {
			printError("fetching collection: %v", err)
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

var collectionsRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.patch(cmd.Context(), "/collections/"+args[0], map[string]string{"name": args[1]})
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			printError("renaming collection: %v", err)
			return err
		}

		printSuccess("Renamed %s to %s", args[0], args[1])
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/collections/"+args[0], nil)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			printError("deleting collection: %v", err)
			return err
		}

		printSuccess("Deleted %s", args[0])
		return nil
	},
}

type collectionInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Distance  string `json:"distance"`
	Count     int    `json:"count"`
}

func init() {
	collectionsCreateCmd.Flags().Int("dimension", 0, "vector dimension")
	collectionsCreateCmd.Flags().String("distance", "cosine", "distance metric: cosine, euclidean, dot")

	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsInfoCmd)
	collectionsCmd.AddCommand(collectionsRenameCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
}

// --- embeddings ---

var embeddingsCmd = &cobra.Command{
	Use:   "embeddings",
	Short: "Manage embeddings within a collection",
}

var embeddingsInsertCmd = &cobra.Command{
	Use:   "insert <collection> <id>",
	Short: "Insert an embedding",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		collection, id := args[0], args[1]
		vectorStr, _ := cmd.Flags().GetString("vector")
		metadataStr, _ := cmd.Flags().GetStringToString("metadata")

		vector, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]any{"vector": vector}
		if len(metadataStr) > 0 {
			body["metadata"] = metadataStr
		}

		resp, err := client.put(cmd.Context(), fmt.Sprintf("/collections/%s/embeddings/%s", collection, id), body)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			printError("inserting embedding: %v", err)
			return err
		}

		printSuccess("Inserted %s into %s", id, collection)
		return nil
	},
}

var embeddingsGetCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Fetch a single embedding",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		novector, _ := cmd.Flags().GetBool("novector")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/collections/%s/embeddings/%s", args[0], args[1])
		if novector {
			path += "?novector=true"
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var result any
		if err := decodeJSON(resp, &result); err != nil {
			printError("fetching embedding: %v", err)
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var embeddingsListCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List embedding ids in a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/collections/%s/embeddings", args[0]))
		if err != nil {
			return err
		}

		var ids []string
		if err := decodeJSON(resp, &ids); err != nil {
			printError("listing embeddings: %v", err)
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No embeddings found.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var embeddingsDeleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Delete an embedding by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), fmt.Sprintf("/collections/%s/embeddings/%s", args[0], args[1]), nil)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			printError("deleting embedding: %v", err)
			return err
		}

		printSuccess("Deleted %s from %s", args[1], args[0])
		return nil
	},
}

func init() {
	embeddingsInsertCmd.Flags().String("vector", "", "comma-separated vector components")
	embeddingsInsertCmd.Flags().StringToString("metadata", nil, "metadata key=value pairs")
	embeddingsInsertCmd.MarkFlagRequired("vector")

	embeddingsGetCmd.Flags().Bool("novector", false, "omit the vector from the response")

	embeddingsCmd.AddCommand(embeddingsInsertCmd)
	embeddingsCmd.AddCommand(embeddingsGetCmd)
	embeddingsCmd.AddCommand(embeddingsListCmd)
	embeddingsCmd.AddCommand(embeddingsDeleteCmd)
}

// --- query ---

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Run a KNN query against a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vectorStr, _ := cmd.Flags().GetString("vector")
		k, _ := cmd.Flags().GetInt("k")

		vector, err := parseVector(vectorStr)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/collections/"+args[0], map[string]any{
			"query": vector,
			"k":     k,
		})
		if err != nil {
			return err
		}

		var results []vecdb.SimilarityResult
		if err := decodeJSON(resp, &results); err != nil {
			printError("querying collection: %v", err)
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%s  %s  score=%.4f\n", colorize(colorBold, fmt.Sprintf("%d.", i+1)), r.Embedding.ID, r.Score)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().String("vector", "", "comma-separated query vector components")
	queryCmd.Flags().Int("k", 1, "number of results to return")
	queryCmd.MarkFlagRequired("vector")
}

func parseVector(s string) ([]float32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("--vector is required")
	}
	parts := strings.Split(s, ",")
	vector := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		vector[i] = float32(f)
	}
	return vector, nil
}
