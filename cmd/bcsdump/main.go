package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/movechain/gobcs/pkg/bcs"
	"github.com/movechain/gobcs/pkg/schema"
)

var version string

func main() {
	var showHelp bool
	var showVersion bool
	var schemaPath string
	var typeName string
	var hexInput string
	var base58Input string
	var format string
	var pretty bool
	var allowTrailing bool
	var verbose bool

	flag.StringVarP(&schemaPath, "schema", "s", "", "Path to a TOML file with type definitions")
	flag.StringVarP(&typeName, "type", "t", "", "Type to decode, defaults to the schema's root type")
	flag.StringVarP(&hexInput, "hex", "x", "", "Input bytes as a hex string, \"0x\" prefix optional")
	flag.StringVarP(&base58Input, "base58", "b", "", "Input bytes as a Base58 encoded string")
	flag.StringVarP(&format, "format", "f", "json", "Output format, \"json\" or \"cbor\"")
	flag.BoolVar(&pretty, "pretty", false, "Indent JSON output")
	flag.BoolVar(&allowTrailing, "allow-trailing", false, "Ignore unread bytes after the decoded value instead of failing")
	flag.BoolVar(&verbose, "verbose", false, "Logs additional information")
	flag.BoolVarP(&showHelp, "help", "h", false, "Print usage information (this message) and quit")
	flag.BoolVarP(&showVersion, "version", "v", false, "Print version information and quit")
	flag.Usage = showUsageAndExit
	flag.Parse()

	if showHelp {
		showUsageAndExit()
	}
	if showVersion {
		showVersionAndExit()
	}
	if schemaPath == "" {
		showUsageAndExit()
	}
	if format != "json" && format != "cbor" {
		showUsageAndExit()
	}
	if flag.NArg() > 1 {
		showUsageAndExit()
	}
	al := zap.NewAtomicLevel()
	ec := zap.NewDevelopmentEncoderConfig()
	if verbose {
		al.SetLevel(zap.DebugLevel)
	}
	logger := zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), al))
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	data, err := inputBytes(hexInput, base58Input, flag.Arg(0))
	if err != nil {
		log.Errorf("Invalid input: %s", err)
		os.Exit(2)
	}

	sch, err := schema.Load(schemaPath)
	if err != nil {
		log.Errorf("Failed to load schema: %s", err)
		os.Exit(2)
	}
	if typeName == "" {
		typeName = sch.Root
	}
	if typeName == "" {
		log.Errorf("Schema '%s' declares no root type, select one with -t", schemaPath)
		os.Exit(2)
	}
	log.Debugf("Decoding %d bytes as type %q", len(data), typeName)

	d := bcs.NewDeserializer(data)
	doc, err := schema.NewDecoder(sch).DecodeType(d, typeName)
	if err != nil {
		log.Errorf("Failed to decode input: %s", err)
		os.Exit(2)
	}
	if rem := d.Remaining(); rem != 0 {
		if !allowTrailing {
			log.Errorf("Failed to decode input: %s", d.ExpectEnd())
			os.Exit(2)
		}
		log.Debugf("Ignoring %d trailing bytes", rem)
	}

	out, err := render(doc, format, pretty)
	if err != nil {
		log.Errorf("Failed to render output: %s", err)
		os.Exit(2)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		log.Errorf("Failed to write output: %s", err)
		os.Exit(2)
	}
}

// inputBytes collects the raw input from exactly one of the three sources.
func inputBytes(hexInput, base58Input, path string) ([]byte, error) {
	sources := 0
	for _, s := range []string{hexInput, base58Input, path} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("pass input bytes with -x, -b or a single file argument")
	}
	switch {
	case hexInput != "":
		digits := strings.TrimPrefix(strings.TrimPrefix(hexInput, "0x"), "0X")
		b, err := hex.DecodeString(digits)
		if err != nil {
			return nil, errors.Wrap(err, "invalid hex string")
		}
		return b, nil
	case base58Input != "":
		b, err := base58.Decode(base58Input)
		if err != nil {
			return nil, errors.Wrap(err, "invalid Base58 string")
		}
		return b, nil
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read input file '%s'", path)
		}
		return b, nil
	}
}

func render(doc any, format string, pretty bool) ([]byte, error) {
	switch format {
	case "json":
		b, err := schema.RenderJSON(doc)
		if err != nil {
			return nil, err
		}
		if pretty {
			var buf bytes.Buffer
			if err := json.Indent(&buf, b, "", "  "); err != nil {
				return nil, errors.Wrap(err, "failed to indent JSON output")
			}
			b = buf.Bytes()
		}
		return append(b, '\n'), nil
	case "cbor":
		return schema.RenderCBOR(doc)
	}
	return nil, errors.Errorf("unsupported output format %q", format)
}

func showUsageAndExit() {
	fmt.Println("usage: bcsdump [flags] [file]")
	flag.PrintDefaults()
	os.Exit(0)
}

func showVersionAndExit() {
	fmt.Printf("bcsdump %s\n", version)
	os.Exit(0)
}
