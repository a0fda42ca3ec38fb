package catalog

import _ "embed"

//go:embed default_catalog.yaml
var defaultCatalog []byte
