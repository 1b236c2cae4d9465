package main

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mkrall/vectorcfg/internal/prefs"
	"github.com/mkrall/vectorcfg/internal/robotconfig"
)

// Command flags
var (
	storePath    string
	outputFormat string

	addSerial string
	addName   string
	addGUID   string
	addCert   string
	addIP     string
	addRemote string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "config", "", "Robot configuration store path (default ~/.anki_vector/sdk_config.ini)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (table, json)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(setIPCmd)
	rootCmd.AddCommand(setRemoteCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(useCmd)
}

// resolveStorePath picks the store location: --config flag, then the
// preferences override, then the conventional default.
func resolveStorePath(store *robotconfig.Store) (string, error) {
	if storePath != "" {
		return storePath, nil
	}
	p, err := prefs.Load()
	if err != nil {
		return "", err
	}
	if p.StorePath != "" {
		return p.StorePath, nil
	}
	return store.DefaultPath()
}

// resolveFormat picks the output format: --format flag, then preferences.
func resolveFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if p, err := prefs.Load(); err == nil && p.OutputFormat != "" {
		return p.OutputFormat
	}
	return "table"
}

// entryView is the JSON rendering of one robot profile. The certificate
// content is summarized, not dumped.
type entryView struct {
	Serial          string `json:"serial"`
	Name            string `json:"name"`
	GUID            string `json:"guid,omitempty"`
	IP              string `json:"ip,omitempty"`
	Remote          string `json:"remote,omitempty"`
	CertificateSize int    `json:"certificate_size"`
}

func viewOf(e *robotconfig.Entry, includeGUID bool) entryView {
	v := entryView{
		Serial:          e.SerialNumber(),
		Name:            e.RobotName(),
		Remote:          e.RemoteHost(),
		CertificateSize: len(e.Certificate()),
	}
	if includeGUID {
		v.GUID = e.GUID()
	}
	if e.IPAddress().IsValid() {
		v.IP = e.IPAddress().String()
	}
	return v
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured robots",
	Long: `List every robot profile in the configuration store.

The default robot (used when commands omit a serial number) is marked
with an asterisk.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}

	entries, err := store.Load(path)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	if resolveFormat() == "json" {
		views := make([]entryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, viewOf(e, false))
		}
		out, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No robots configured.")
		fmt.Println("\nUse 'vector-cfg add' to register a robot profile.")
		return nil
	}

	defaultSerial := ""
	if p, err := prefs.Load(); err == nil {
		defaultSerial = p.DefaultSerial
	}

	fmt.Printf("%-2s %-10s %-14s %-16s %s\n", "", "SERIAL", "NAME", "IP", "REMOTE")
	for _, e := range entries {
		marker := ""
		if e.SerialNumber() == defaultSerial {
			marker = "*"
		}
		ip := ""
		if e.IPAddress().IsValid() {
			ip = e.IPAddress().String()
		}
		fmt.Printf("%-2s %-10s %-14s %-16s %s\n",
			marker, e.SerialNumber(), e.RobotName(), ip, e.RemoteHost())
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show [serial]",
	Short: "Show one robot profile",
	Long: `Show the full profile for one robot.

Without a serial number, shows the default robot (set with 'vector-cfg
use'), or the first profile in the store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}

	var entry *robotconfig.Entry
	if len(args) == 1 {
		entry, err = findEntry(store, path, args[0])
	} else {
		entry, err = defaultEntry(store, path)
	}
	if err != nil {
		return err
	}

	if resolveFormat() == "json" {
		out, err := json.MarshalIndent(viewOf(entry, true), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Serial:      %s\n", entry.SerialNumber())
	fmt.Printf("Name:        %s\n", entry.RobotName())
	fmt.Printf("GUID:        %s\n", entry.GUID())
	if entry.IPAddress().IsValid() {
		fmt.Printf("IP:          %s\n", entry.IPAddress())
	} else {
		fmt.Printf("IP:          (unknown)\n")
	}
	if entry.HasRemoteHost() {
		fmt.Printf("Remote:      %s\n", entry.RemoteHost())
	} else {
		fmt.Printf("Remote:      (direct connection)\n")
	}
	fmt.Printf("Certificate: %d bytes\n", len(entry.Certificate()))
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a robot profile",
	Long: `Add a robot profile to the configuration store, or update the
profile with the same serial number.

The GUID is prompted without echo when --guid is omitted. The certificate
is read from the PEM file given with --cert; on first save it is copied
next to the store under <name>-<serial>.cert.`,
	Example: `  # Register a robot, prompting for the GUID
  vector-cfg add --serial 00e20142 --name Vector-E5S6 --cert ./robot.pem --ip 192.168.1.57

  # Register a robot reachable through a relay
  vector-cfg add --serial 00e20142 --name Vector-E5S6 --cert ./robot.pem --remote relay.example.com:443`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addSerial, "serial", "", "Robot serial number (required)")
	addCmd.Flags().StringVar(&addName, "name", "", "Robot name, form Vector-XXXX (required)")
	addCmd.Flags().StringVar(&addCert, "cert", "", "Path to the robot's PEM certificate (required)")
	addCmd.Flags().StringVar(&addGUID, "guid", "", "Authentication GUID (prompted when omitted)")
	addCmd.Flags().StringVar(&addIP, "ip", "", "Robot IP address")
	addCmd.Flags().StringVar(&addRemote, "remote", "", "Remote host override (host[:port])")
	_ = addCmd.MarkFlagRequired("serial")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("cert")
}

func runAdd(cmd *cobra.Command, args []string) error {
	pem, err := os.ReadFile(addCert)
	if err != nil {
		return fmt.Errorf("cannot read certificate file: %w", err)
	}

	guid := addGUID
	if guid == "" {
		guid, err = promptGUID()
		if err != nil {
			return err
		}
	}

	entry := robotconfig.NewEntry(addSerial)
	entry.SetRobotName(addName)
	entry.SetGUID(guid)
	entry.SetCertificate(string(pem))
	if addIP != "" {
		addr, err := netip.ParseAddr(addIP)
		if err != nil {
			return fmt.Errorf("invalid ip address %q: %w", addIP, err)
		}
		entry.SetIPAddress(addr)
	}
	if addRemote != "" {
		entry.SetRemoteHost(addRemote)
	}

	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}
	if err := store.AddOrUpdate(path, entry); err != nil {
		return err
	}

	fmt.Printf("Saved profile for %s (%s)\n", entry.RobotName(), entry.SerialNumber())
	return nil
}

// promptGUID reads the authentication GUID without echoing it, so the
// token does not land in terminal scrollback or shell history.
func promptGUID() (string, error) {
	fmt.Print("GUID: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("cannot read GUID: %w", err)
	}
	guid := strings.TrimSpace(string(raw))
	if guid == "" {
		return "", fmt.Errorf("GUID cannot be empty")
	}
	return guid, nil
}

var setIPCmd = &cobra.Command{
	Use:   "set-ip <serial> <ip>",
	Short: "Update a robot's last known IP address",
	Args:  cobra.ExactArgs(2),
	RunE:  runSetIP,
}

func runSetIP(cmd *cobra.Command, args []string) error {
	addr, err := netip.ParseAddr(args[1])
	if err != nil {
		return fmt.Errorf("invalid ip address %q: %w", args[1], err)
	}

	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}
	entry, err := findEntry(store, path, args[0])
	if err != nil {
		return err
	}

	if !entry.SetIPAddress(addr) {
		fmt.Printf("%s already at %s\n", entry.SerialNumber(), addr)
		return nil
	}
	if err := store.AddOrUpdate(path, entry); err != nil {
		return err
	}
	fmt.Printf("Updated %s: ip=%s\n", entry.SerialNumber(), addr)
	return nil
}

var setRemoteCmd = &cobra.Command{
	Use:   "set-remote <serial> [host[:port]]",
	Short: "Set or clear a robot's remote host override",
	Long: `Set the remote host used instead of the robot's LAN address.

Omitting the host clears the override, so the SDK connects directly
again.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSetRemote,
}

func runSetRemote(cmd *cobra.Command, args []string) error {
	host := ""
	if len(args) == 2 {
		host = args[1]
	}

	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}
	entry, err := findEntry(store, path, args[0])
	if err != nil {
		return err
	}

	entry.SetRemoteHost(host)
	if err := store.AddOrUpdate(path, entry); err != nil {
		return err
	}
	if entry.HasRemoteHost() {
		fmt.Printf("Updated %s: remote=%s\n", entry.SerialNumber(), host)
	} else {
		fmt.Printf("Cleared remote host for %s\n", entry.SerialNumber())
	}
	return nil
}

var removeCmd = &cobra.Command{
	Use:   "remove <serial>",
	Short: "Remove a robot profile",
	Long: `Remove one robot's section from the configuration store.

The materialized certificate file is left on disk; delete it manually if
it is no longer wanted.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}

	entries, err := store.Load(path)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	kept := make([]*robotconfig.Entry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.SerialNumber() == args[0] {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("no robot with serial %q", args[0])
	}

	if err := store.Save(path, kept); err != nil {
		return err
	}
	fmt.Printf("Removed %s (%d profile(s) remain)\n", args[0], len(kept))
	return nil
}

var useCmd = &cobra.Command{
	Use:   "use <serial>",
	Short: "Set the default robot",
	Long:  `Record the robot used when commands omit a serial number.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUse,
}

func runUse(cmd *cobra.Command, args []string) error {
	store := robotconfig.NewStore()
	path, err := resolveStorePath(store)
	if err != nil {
		return err
	}
	entry, err := findEntry(store, path, args[0])
	if err != nil {
		return err
	}

	p, err := prefs.Load()
	if err != nil {
		return err
	}
	p.DefaultSerial = entry.SerialNumber()
	if err := p.Save(); err != nil {
		return err
	}
	fmt.Printf("Default robot is now %s (%s)\n", entry.RobotName(), entry.SerialNumber())
	return nil
}

// findEntry loads the store and returns the entry with the given serial.
func findEntry(store *robotconfig.Store, path, serial string) (*robotconfig.Entry, error) {
	for entry, err := range store.LoadAll(path) {
		if err != nil {
			return nil, fmt.Errorf("load failed: %w", err)
		}
		if entry.SerialNumber() == serial {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("no robot with serial %q", serial)
}

// defaultEntry returns the preferred robot: the serial recorded by
// 'vector-cfg use' when present, otherwise the first profile in the store.
func defaultEntry(store *robotconfig.Store, path string) (*robotconfig.Entry, error) {
	if p, err := prefs.Load(); err == nil && p.DefaultSerial != "" {
		return findEntry(store, path, p.DefaultSerial)
	}
	entry, err := store.LoadDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load failed: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("no robots configured")
	}
	return entry, nil
}
