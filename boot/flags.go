package boot

import (
	"flag"
	"os"
	"strings"

	"github.com/sprucehealth/casedata/libs/golog"
)

// ParseFlags parses the command line and then fills every flag that was not
// set explicitly from the environment. The variable for a flag is the prefix
// followed by the upper cased flag name with '.' and '-' replaced by '_'
// (e.g. CASEDATA_AWS_REGION for -aws_region).
func ParseFlags(envPrefix string) {
	if err := parseFlagSet(flag.CommandLine, os.Args[1:], envPrefix, os.LookupEnv); err != nil {
		golog.Fatalf("Failed to parse flags: %s", err)
	}
}

func parseFlagSet(fs *flag.FlagSet, args []string, envPrefix string, lookup func(string) (string, bool)) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || set[f.Name] {
			return
		}
		if v, ok := lookup(EnvName(envPrefix, f.Name)); ok {
			if e := fs.Set(f.Name, v); e != nil {
				err = e
			}
		}
	})
	return err
}

// EnvName returns the environment variable consulted for a flag.
func EnvName(envPrefix, flagName string) string {
	return envPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(flagName))
}
