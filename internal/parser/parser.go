package parser

import (
	"io"

	"fjacquet/pricelist-import/internal/logging"
	"fjacquet/pricelist-import/internal/models"
)

// Parser reads one price-list payload.
type Parser interface {
	// Parse reads the whole payload and returns the collected items, row errors
	// and warnings. A returned error means nothing could be parsed at all, e.g.
	// the header lacks the cost price column; bad rows never produce one.
	Parse(r io.Reader) (*models.ParseResult, error)
}

// LoggerConfigurable is implemented by parsers that accept an injected logger.
type LoggerConfigurable interface {
	SetLogger(logger logging.Logger)
}

// FullParser is what the factory hands out.
type FullParser interface {
	Parser
	LoggerConfigurable
}
