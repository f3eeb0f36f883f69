package commands

// Version information placeholder.
var Version = "dev"

// ClientName is the name announced to servers during initialization.
const ClientName = "cmcp"

const versionTemplate = "cmcp version {{.Version}}\n"
