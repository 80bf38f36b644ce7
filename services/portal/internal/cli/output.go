package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

func (rt *runtime) print(v interface{}) error {
	if rt.output == "yaml" {
		enc := yaml.NewEncoder(rt.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(rt.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// secret returns flagValue or, when empty, the first line of stdin.
func (rt *runtime) secret(flagValue, name string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(rt.in).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("%s required: pass --%s or pipe it on stdin", name, name)
		}
		return "", fmt.Errorf("%s must not be empty", name)
	}
	return line, nil
}
