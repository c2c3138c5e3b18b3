// Package config provides configuration management for rtcsync.
//
// This package handles loading configuration from YAML files, applying
// environment variable overrides, setting defaults, and validating the
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// The configuration file is optional: the hook is normally driven entirely by
// the UPLOAD_PORT environment variable the build tool exports, so
// LoadOrDefault falls back to pure defaults when the file is missing.
//
// Supported environment variables:
//   - RTCSYNC_PORT: Serial port to use
//   - RTCSYNC_BAUD: Baud rate (300-4000000)
//   - RTCSYNC_TIME_SOURCE: Where to take the time from (system, ntp)
//   - RTCSYNC_NTP_SERVER: NTP server to query when time_source is ntp
//   - RTCSYNC_LOG_LEVEL: Log level (debug, info, warn, error)
//   - RTCSYNC_LOG_FORMAT: Log output format (text, json)
//
// Delay values are duration strings ("3s", "500ms") and may be set to "0s"
// explicitly; only an absent field falls back to its default.
//
// Example configuration file (rtcsync.yaml):
//
//	port: /dev/ttyUSB0
//	baud: 115200
//	time_source: system
//
//	boot_delay: 3s        # wait for the device to reboot after flashing
//	settle_delay: 1s      # wait after opening the port
//	response_delay: 500ms # wait before checking for a reply
//	read_timeout: 2s
//
//	log_level: info
//	log_format: text
//
// Example usage:
//
//	cfg, err := config.LoadOrDefault("rtcsync.yaml")
//	if err != nil {
//		log.Fatalf("Failed to load config: %v", err)
//	}
//
//	fmt.Printf("Port: %s, baud: %d\n", cfg.Port, cfg.Baud)
package config
