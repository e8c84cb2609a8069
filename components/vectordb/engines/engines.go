package engines

import (
	"github.com/bububa/omniquery/components/vectordb/engines/chromem"
	"github.com/bububa/omniquery/components/vectordb/engines/memory"
)

var (
	FromChromem = chromem.New
	FromMemory  = memory.New
)
