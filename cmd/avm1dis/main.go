// avm1dis decodes and disassembles AVM1 action bytecode.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/swfaction/avm1"
	"github.com/chazu/swfaction/config"
	"github.com/chazu/swfaction/listing"
	"github.com/chazu/swfaction/store"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	offset := flag.Int("offset", 0, "Byte offset of the action stream in the input")
	length := flag.Int("length", -1, "Length of the action stream (-1 for the rest of the input)")
	hexInput := flag.Bool("hex", false, "Input is hex text rather than raw bytes")
	output := flag.String("o", "", "Write the decoded listing as CBOR to this file")
	useCache := flag.Bool("cache", false, "Use the decode cache even if the config disables it")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides the config file)")
	configDir := flag.String("config", "", "Directory containing avm1.toml (default: search upward from the working directory)")
	swfVersion := flag.Int("swf", 0, "SWF version of the movie (overrides the config file)")
	quiet := flag.Bool("q", false, "Do not print the disassembly")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: avm1dis [options] <file|->\n\n")
		fmt.Fprintf(os.Stderr, "Decodes an AVM1 action stream and prints its disassembly.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  avm1dis frame1.bin                       # Disassemble a raw action stream\n")
		fmt.Fprintf(os.Stderr, "  avm1dis -offset 0x40 -length 120 a.swf   # Disassemble a range of a file\n")
		fmt.Fprintf(os.Stderr, "  echo '07 00' | avm1dis -hex -            # Disassemble hex from stdin\n")
		fmt.Fprintf(os.Stderr, "  avm1dis -swf 5 -o frame1.cbor frame1.bin # Decode as SWF 5, save the listing\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	v := cfg.Log.Verbosity
	if *verbosity >= 0 {
		v = *verbosity
	}
	var logFile *string
	if cfg.Log.File != "" {
		logFile = &cfg.Log.File
	}
	commonlog.Configure(v, logFile)
	log := commonlog.GetLogger("swfaction.avm1dis")

	opts, err := cfg.DecoderOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *swfVersion > 0 {
		if *swfVersion > 255 {
			fmt.Fprintf(os.Stderr, "Error: SWF version %d out of range\n", *swfVersion)
			os.Exit(1)
		}
		opts.Version = uint8(*swfVersion)
	}

	raw, err := readInput(path, *hexInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := selectRange(raw, *offset, *length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Infof("decoding %d bytes at offset %d as SWF %d", len(data), *offset, opts.Version)

	dec := avm1.NewDecoder(opts)
	var actions []avm1.Action
	if cfg.Cache.Enabled || *useCache {
		actions, err = decodeCached(dec, cfg.CachePath(), data)
	} else {
		actions, err = dec.Decode(data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		fmt.Print(avm1.DisassembleWithName(displayName(path, *offset), actions))
	}

	if *output != "" {
		hash, err := writeListing(*output, actions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Infof("wrote listing %x to %s", hash, *output)
	}
}

// loadConfig loads avm1.toml from dir, or searches upward from the working
// directory when dir is empty. Without a file the defaults apply.
func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// readInput reads path, or stdin for "-". Hex input may contain whitespace
// and an optional 0x prefix per token.
func readInput(path string, isHex bool) ([]byte, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if !isHex {
		return raw, nil
	}
	return parseHex(string(raw))
}

func parseHex(text string) ([]byte, error) {
	var sb strings.Builder
	for _, field := range strings.Fields(text) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		sb.WriteString(field)
	}
	data, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}

// selectRange returns the length bytes of data starting at offset. A negative
// length selects the rest of data.
func selectRange(data []byte, offset, length int) ([]byte, error) {
	if offset < 0 || offset > len(data) {
		return nil, fmt.Errorf("offset %d outside input of %d bytes", offset, len(data))
	}
	data = data[offset:]
	if length < 0 {
		return data, nil
	}
	if length > len(data) {
		return nil, fmt.Errorf("length %d exceeds the %d bytes after offset %d", length, len(data), offset)
	}
	return data[:length], nil
}

func decodeCached(dec *avm1.Decoder, path string, data []byte) ([]avm1.Action, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Decode(context.Background(), dec, data)
}

// writeListing writes the CBOR listing of actions to path and returns its
// content hash.
func writeListing(path string, actions []avm1.Action) ([32]byte, error) {
	nodes := listing.FromActions(actions)
	data, err := listing.Marshal(nodes)
	if err != nil {
		return [32]byte{}, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return [32]byte{}, fmt.Errorf("cannot write %s: %w", path, err)
	}
	return listing.Hash(nodes)
}

func displayName(path string, offset int) string {
	name := filepath.Base(path)
	if path == "-" {
		name = "stdin"
	}
	if offset > 0 {
		name = fmt.Sprintf("%s+0x%X", name, offset)
	}
	return name
}
