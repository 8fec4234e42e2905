// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/internal/validate"
)

// addDirectoryCmds registers the commands that create directory content.
func addDirectoryCmds(admin *cobra.Command, env *cmdEnv) {
	admin.AddCommand(newCreateTagCmd(env))
	admin.AddCommand(newCreateWebringCmd(env))
	admin.AddCommand(newAddSiteCmd(env))
	admin.AddCommand(newAddModeratorCmd(env))
}

func newCreateTagCmd(env *cmdEnv) *cobra.Command {
	var creator string
	cmd := &cobra.Command{
		Use:   "create-tag <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creatorID, err := validate.ParseID("creator_id", creator)
			if err != nil {
				//nolint:wrapcheck // validation errors are already coded
				return err
			}
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				tag, err := svc.Directory.CreateTag(ctx, args[0], creatorID)
				if err != nil {
					//nolint:wrapcheck // directory errors are already coded
					return err
				}
				cmd.Printf("Created tag %s (%s)\n", tag.ID, tag.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "ID of the creating user")
	_ = cmd.MarkFlagRequired("creator")
	return cmd
}

func newCreateWebringCmd(env *cmdEnv) *cobra.Command {
	var (
		creator string
		in      ring.WebringInput
	)
	cmd := &cobra.Command{
		Use:   "create-webring <name> <url>",
		Short: "Create a webring owned by a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			creatorID, err := validate.ParseID("creator_id", creator)
			if err != nil {
				//nolint:wrapcheck // validation errors are already coded
				return err
			}
			in.Name, in.URL, in.CreatorID = args[0], args[1], creatorID
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				w, err := svc.Directory.CreateWebring(ctx, in)
				if err != nil {
					//nolint:wrapcheck // directory errors are already coded
					return err
				}
				cmd.Printf("Created webring %s (%s)\n", w.ID, w.URL)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "ID of the owning user")
	cmd.Flags().StringVar(&in.Description, "description", "", "webring description")
	cmd.Flags().BoolVar(&in.Private, "private", false, "hide the webring from public listings")
	cmd.Flags().StringArrayVar(&in.Tags, "tag", nil, "tag name to attach (repeatable)")
	_ = cmd.MarkFlagRequired("creator")
	return cmd
}

func newAddSiteCmd(env *cmdEnv) *cobra.Command {
	var addedBy string
	cmd := &cobra.Command{
		Use:   "add-site <webring-id> <name> <url>",
		Short: "List a site in a webring",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			webringID, err := validate.ParseID("webring_id", args[0])
			if err != nil {
				//nolint:wrapcheck // validation errors are already coded
				return err
			}
			addedByID, err := validate.ParseID("added_by_id", addedBy)
			if err != nil {
				//nolint:wrapcheck // validation errors are already coded
				return err
			}
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				s, err := svc.Directory.AddSite(ctx, ring.SiteInput{
					WebringID: webringID,
					Name:      args[1],
					URL:       args[2],
					AddedByID: addedByID,
				})
				if err != nil {
					//nolint:wrapcheck // directory errors are already coded
					return err
				}
				cmd.Printf("Added site %s (%s)\n", s.ID, s.URL)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addedBy, "added-by", "", "ID of the user adding the site")
	_ = cmd.MarkFlagRequired("added-by")
	return cmd
}

func newAddModeratorCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "add-moderator <webring-id> <user-id>",
		Short: "Grant a user moderation of a webring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			webringID, err := validate.ParseID("webring_id", args[0])
			if err != nil {
				//nolint:wrapcheck // validation errors are already coded
				return err
			}
			userID, err := validate.ParseID("user_id", args[1])
			if err != nil {
				//nolint:wrapcheck // validation errors are already coded
				return err
			}
			return withServices(cmd, env, func(ctx context.Context, svc *Services) error {
				if err := svc.Directory.AddModerator(ctx, webringID, userID); err != nil {
					//nolint:wrapcheck // directory errors are already coded
					return err
				}
				cmd.Printf("Added moderator %s to webring %s\n", userID, webringID)
				return nil
			})
		},
	}
}
