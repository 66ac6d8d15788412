package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nutriswap/backend/internal/usecase"
)

func newSearchCmd(load loadFunc) *cobra.Command {
	var (
		sortBy string
		pages  int
	)
	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search the catalog and print the resulting search state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			cfg, log, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			session := usecase.NewSearchSession()
			terms := strings.Join(args, " ")
			state := a.search.Search(ctx, session, usecase.SearchRequest{
				Query:  &terms,
				SortBy: &sortBy,
				Mode:   usecase.SearchComplete,
			})
			for page := 1; page < pages && state.LastError == "" && state.CurrentPage < state.TotalPages; page++ {
				state = a.search.Search(ctx, session, usecase.SearchRequest{Mode: usecase.SearchMore})
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "catalog sort key, e.g. popularity_key")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to load")
	return cmd
}

func newProductCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Print a product's detail with display categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			product, err := a.products.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"product":           product,
				"displayCategories": a.categories.TranslateCategories(ctx, product.Categories),
			})
		},
	}
}

func newSuggestCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <id>",
		Short: "Print healthier alternatives for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			product, err := a.products.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			state := a.suggestions.Suggest(ctx, usecase.SuggestionRequest{
				ProductID:  product.ID,
				Category:   product.Category,
				Categories: product.Categories,
				Name:       product.DisplayName,
				Brand:      product.Brand,
				NutriScore: product.NutriScore,
				NovaGroup:  product.NovaGroup,
			})
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
}

func newLatestCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the most recently added complete products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			products, err := a.products.LatestProducts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), products)
		},
	}
}
