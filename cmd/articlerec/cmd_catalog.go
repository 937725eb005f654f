package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// articleCmd prints one work's detail view
var articleCmd = &cobra.Command{
	Use:   "article [uri]",
	Short: "Show an article's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runArticle,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user ids",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

// conceptCmd prints the hierarchy around the first concept matching a label
var conceptCmd = &cobra.Command{
	Use:   "concept [label]",
	Short: "Show a concept and its neighbours",
	Args:  cobra.ExactArgs(1),
	RunE:  runConcept,
}

func runArticle(cmd *cobra.Command, args []string) error {
	a, ctx, cancel, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close(ctx)

	detail, err := a.Storage.Store.WorkDetail(ctx, args[0])
	if err != nil {
		return fmt.Errorf("article: %w", err)
	}
	if detail == nil {
		return fmt.Errorf("article %q not found", args[0])
	}
	return printJSON(cmd.OutOrStdout(), detail)
}

func runUsers(cmd *cobra.Command, args []string) error {
	a, ctx, cancel, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close(ctx)

	users, err := a.Storage.Store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("users: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), users)
}

func runConcept(cmd *cobra.Command, args []string) error {
	a, ctx, cancel, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close(ctx)

	hood, err := a.Storage.Store.ConceptNeighborhood(ctx, args[0])
	if err != nil {
		return fmt.Errorf("concept: %w", err)
	}
	if hood == nil {
		return fmt.Errorf("concept %q not found", args[0])
	}
	return printJSON(cmd.OutOrStdout(), hood)
}
