package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/streamdal/mavmon/options"
)

var (
	typeFlag   *string
	outputFlag *string

	validTypes  = []string{"flags"}
	validOutput = []string{"markdown"}
)

func main() {
	if err := parseFlags(); err != nil {
		log.Fatalf("error: %s", err)
	}

	switch *typeFlag {
	case "flags":
		generateFlagDocs(os.Stdout, *outputFlag)
	default:
		log.Fatalf("unknown cmd '%s'", *typeFlag)
	}
}

func generateFlagDocs(w io.Writer, outputType string) {
	if outputType != "markdown" {
		log.Fatalf("'%s' output type is not supported", outputType)
	}

	tags, err := getKongTags(reflect.TypeOf(options.Options{}))
	if err != nil {
		log.Fatalf("unable to fetch kong tags: %s", err)
	}

	if len(tags) == 0 {
		log.Fatal("unexpected: got 0 tags")
	}

	fmt.Fprintf(w, "# Command line\n\n")
	fmt.Fprintf(w, "```\n%s```\n\n", options.Usage)

	displayMarkdown(w, tags)
}

func displayMarkdown(w io.Writer, tags []*KongTag) {
	fmt.Fprintf(w, "| **Flag** | **Description** | **Default** | **Required** |\n")
	fmt.Fprintf(w, "| -------- | --------------- | ----------- | ------------ |\n")

	for _, v := range tags {
		requiredStr := fmt.Sprint(v.Required)

		if v.Required {
			requiredStr = "**" + requiredStr + "**"
		}

		fmt.Fprintf(w, "| %s | %s | %s | %v |\n", v.display(), v.Help, v.Default, requiredStr)
	}
}

type KongTag struct {
	Name     string
	Help     string
	Default  string
	Arg      bool
	Required bool
}

func (k *KongTag) display() string {
	if k.Arg {
		return "`<" + k.Name + ">`"
	}

	return "`--" + k.Name + "`"
}

func getKongTags(t reflect.Type) ([]*KongTag, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct, got '%s'", t.Kind())
	}

	tags := make([]*KongTag, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		raw, ok := field.Tag.Lookup("kong")
		if !ok {
			continue
		}

		kongTag, err := parseKongTag(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse kong tag for field '%s'", field.Name)
		}

		if kongTag.Name == "" {
			kongTag.Name = flagName(field.Name)
		}

		tags = append(tags, kongTag)
	}

	return tags, nil
}

// parseKongTag understands the `kong:"a,b='c,d',e"` form; commas inside
// quoted values do not split options.
func parseKongTag(s string) (*KongTag, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty kong tag")
	}

	kongTag := &KongTag{}

	for _, option := range splitOptions(s) {
		key, value, hasValue := strings.Cut(option, "=")
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "'")

		if !hasValue {
			switch key {
			case "arg":
				kongTag.Arg = true
				kongTag.Required = true
			case "required":
				kongTag.Required = true
			}

			continue
		}

		switch key {
		case "name":
			kongTag.Name = value
		case "help":
			kongTag.Help = value
		case "default":
			kongTag.Default = value
		}
	}

	return kongTag, nil
}

func splitOptions(s string) []string {
	options := make([]string, 0)

	var quoted bool
	start := 0

	for i, r := range s {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == ',' && !quoted:
			options = append(options, s[start:i])
			start = i + 1
		}
	}

	return append(options, s[start:])
}

// flagName derives kong's default flag name: DiscoveryTimeout -> discovery-timeout
func flagName(field string) string {
	sb := &strings.Builder{}

	runes := []rune(field)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteRune('-')
			}

			r = unicode.ToLower(r)
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

func parseFlags() error {
	typeFlag = flag.String("type", "flags", "What type of docs to generate (options: flags)")
	outputFlag = flag.String("output", "markdown", "What format to use for output (options: markdown)")

	flag.Parse()

	if typeFlag == nil || outputFlag == nil {
		return errors.New("usage: ./doc-generator [-h] ...")
	}

	var validTypeFlag bool

	for _, v := range validTypes {
		if v == *typeFlag {
			validTypeFlag = true
		}
	}

	if !validTypeFlag {
		return fmt.Errorf("'%s' is an invalid -type", *typeFlag)
	}

	var validOutputFlag bool

	for _, v := range validOutput {
		if v == *outputFlag {
			validOutputFlag = true
		}
	}

	if !validOutputFlag {
		return fmt.Errorf("'%s' is an invalid -output", *outputFlag)
	}

	return nil
}
