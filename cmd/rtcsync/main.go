package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/antihunter/rtcsync/internal/clock"
	"github.com/antihunter/rtcsync/internal/config"
	"github.com/antihunter/rtcsync/internal/logger"
	"github.com/antihunter/rtcsync/internal/rtc"
	"github.com/antihunter/rtcsync/internal/serialio"
	"github.com/antihunter/rtcsync/internal/timesource"
	"github.com/antihunter/rtcsync/internal/version"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "rtcsync",
		Short: "Post-upload hook that synchronizes a device RTC over serial",
		Long: `rtcsync is a post-upload hook for embedded-firmware build pipelines.

After firmware is flashed to a device it opens the upload port and sends the
current time as a SETTIME command so the device can set its real-time clock.
The sync is best-effort: a failure is logged and never fails the build.`,
		Run: func(cmd *cobra.Command, args []string) {
			// If no command is specified, print help
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rtcsync.yaml", "path to configuration file")

	var portFlag string
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Send the current time to the device over the upload port",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log := logger.New(cfg.LogLevel, cfg.LogFormat)

			opts := rtc.Options{
				Port:          resolvePort(portFlag, cfg),
				Baud:          cfg.Baud,
				BootDelay:     cfg.BootDelay.Std(),
				SettleDelay:   cfg.SettleDelay.Std(),
				ResponseDelay: cfg.ResponseDelay.Std(),
				ReadTimeout:   cfg.ReadTimeout.Std(),
			}

			// Best-effort: Run logs and swallows transport failures so the
			// surrounding build continues either way
			rtc.NewSetter(opts, buildTimeSource(cfg), log).Run()
			return nil
		},
	}
	syncCmd.Flags().StringVar(&portFlag, "port", "", "serial port to use (overrides UPLOAD_PORT and the config file)")

	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports visible on this host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPorts(os.Stdout)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Short())
		},
	}

	rootCmd.AddCommand(syncCmd, portsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolvePort picks the serial port to use: the --port flag first, then the
// UPLOAD_PORT variable the build tool exports, then the config file. An empty
// result means the sync is skipped.
func resolvePort(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("UPLOAD_PORT"); env != "" {
		return env
	}
	return cfg.Port
}

// buildTimeSource constructs the configured time source
func buildTimeSource(cfg *config.Config) timesource.Source {
	if cfg.TimeSource == config.TimeSourceNTP {
		return timesource.NewNTP(cfg.NTPServer, clock.RealClock{})
	}
	return timesource.System{Clock: clock.RealClock{}}
}

// printPorts renders the host's serial ports as a table
func printPorts(w io.Writer) error {
	details, err := serialio.List()
	if err != nil {
		return err
	}

	if len(details) == 0 {
		fmt.Fprintln(w, color.YellowString("no serial ports found"))
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Port", "USB", "VID:PID", "Serial", "Product"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, p := range details {
		usb := ""
		vidpid := ""
		if p.IsUSB {
			usb = color.GreenString("yes")
			vidpid = fmt.Sprintf("%s:%s", p.VID, p.PID)
		}
		table.Append([]string{p.Name, usb, vidpid, p.SerialNumber, p.Product})
	}

	table.Render()
	return nil
}
