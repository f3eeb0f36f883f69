/*
Package alias implements named server targets for cmcp.

An alias carries a target and default items. The items use the command-line item
syntax and are placed before the items given on the command line, so the command
line wins on duplicate keys.
*/
package alias

import "strings"

// ServerAlias is a named target with default items.
type ServerAlias struct {
	Target string   `json:"target" mapstructure:"target"`
	Items  []string `json:"items,omitempty" mapstructure:"items"`
}

// Aliases maps alias names to servers. Names are matched case-insensitively.
type Aliases map[string]ServerAlias

// Lookup returns the alias named name.
func (a Aliases) Lookup(name string) (ServerAlias, bool) {
	if server, found := a[name]; found && server.Target != "" {
		return server, true
	}
	for key, server := range a {
		if strings.EqualFold(key, name) && server.Target != "" {
			return server, true
		}
	}
	return ServerAlias{}, false
}

// Resolve returns the target and items to use for target and items. When target
// names an alias, the alias target is used and its items are prepended.
func (a Aliases) Resolve(target string, items []string) (string, []string, bool) {
	server, found := a.Lookup(target)
	if !found {
		return target, items, false
	}

	merged := make([]string, 0, len(server.Items)+len(items))
	merged = append(merged, server.Items...)
	merged = append(merged, items...)
	return server.Target, merged, true
}
