// Package commands implements the smbcli CLI for browsing SMB shares.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile  string
	server   string
	share    string
	username string
	realm    string
	keytab   string
	spn      string
	debug    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "smbcli",
	Short: "smbcli - SMB2/3 command line client",
	Long: `smbcli is a command line client for SMB2/3 file servers. It speaks the
protocol directly over TCP (no mount, no kernel involvement) and
authenticates with Kerberos.

Use "smbcli [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("smbcli %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/smbcore/config.yaml)")
	pf.StringVarP(&server, "server", "s", "", "server host or host:port")
	pf.StringVar(&share, "share", "", "share name")
	pf.StringVarP(&username, "username", "u", "", "Kerberos principal (without realm)")
	pf.StringVar(&realm, "realm", "", "Kerberos realm")
	pf.StringVar(&keytab, "keytab", "", "authenticate from a keytab instead of a password prompt")
	pf.StringVar(&spn, "spn", "", "target service principal (default: cifs/<server>)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(truncateCmd)
	rootCmd.AddCommand(pingCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
