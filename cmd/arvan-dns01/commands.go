package main

import (
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/yuriy-kovalchuk/arvan-dns01/internal/dns"
)

func newPerformCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "perform [domain] [validation-name] [token]",
		Short: "Publish the validation TXT record",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctrl.Log.WithName("perform")

			ch, err := challengeFromArgs(args, true)
			if err != nil {
				return err
			}
			auth, err := opts.newAuthenticator(cmd.Context(), ctrl.Log, scheme)
			if err != nil {
				return err
			}

			log.Info("publishing validation record", "domain", ch.Domain, "name", ch.ValidationName)
			if err := auth.Perform(cmd.Context(), ch); err != nil {
				return fmt.Errorf("publishing validation record for %s: %w", ch.Domain, err)
			}
			log.Info("validation record published", "name", ch.ValidationName)
			return nil
		},
	}
}

func newCleanupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup [domain] [validation-name] [token]",
		Short: "Remove the validation TXT record (best-effort, always exits 0)",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := ctrl.Log.WithName("cleanup")

			ch, err := challengeFromArgs(args, false)
			if err != nil {
				log.Error(err, "skipping cleanup")
				return nil
			}
			auth, err := opts.newAuthenticator(cmd.Context(), ctrl.Log, scheme)
			if err != nil {
				log.Error(err, "skipping cleanup", "domain", ch.Domain)
				return nil
			}

			auth.Cleanup(cmd.Context(), ch)
			log.Info("cleanup finished", "name", ch.ValidationName)
			return nil
		},
	}
}

func newResolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <validation-name>",
		Short: "Print the zone and relative record name for a validation hostname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := opts.newAuthenticator(cmd.Context(), ctrl.Log, scheme)
			if err != nil {
				return err
			}
			resolver, ok := auth.(dns.ZoneResolver)
			if !ok {
				return fmt.Errorf("provider does not support zone resolution")
			}

			zone, err := resolver.ResolveZone(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", zone, dns.RelativeName(args[0], zone))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
