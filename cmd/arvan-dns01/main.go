package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	_ "github.com/yuriy-kovalchuk/arvan-dns01/internal/dns/providers"
)

var (
	scheme  = runtime.NewScheme()
	Version = "dev"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

func main() {
	// Load .env file if it exists; a missing file is not an error.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	zapOpts := zap.Options{
		Development: true,
	}

	root := &cobra.Command{
		Use:   "arvan-dns01",
		Short: "ArvanCloud DNS-01 authenticator",
		Long: `arvan-dns01 publishes and removes ACME DNS-01 validation TXT records
through the ArvanCloud CDN API. It can be used directly or as a certbot
manual auth/cleanup hook, in which case CERTBOT_DOMAIN and CERTBOT_VALIDATION
are read from the environment.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))
		},
	}

	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	zapOpts.BindFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)
	opts.bindFlags(root.PersistentFlags())

	root.AddCommand(
		newPerformCmd(opts),
		newCleanupCmd(opts),
		newResolveCmd(opts),
		newVersionCmd(),
	)
	return root
}
