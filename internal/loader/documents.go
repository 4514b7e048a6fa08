package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	validatorrules "github.com/vektah/gqlparser/v2/validator/rules"
	"go.uber.org/zap"

	"github.com/jzeiders/gqlshape/pkg/config"
	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/schema"
)

const defaultParseCacheSize = 1024

// rules that only make sense within a single file: documents are validated
// as one set, so a fragment used from another file or several anonymous
// operations across files are fine. Named operations are still checked for
// uniqueness by uniqueOperationNames.
var crossFileRules = []string{
	"NoUnusedFragments",
	"LoneAnonymousOperation",
	"UniqueOperationNames",
}

// DocumentLoader finds, parses and validates GraphQL documents
type DocumentLoader struct {
	parsed *lru.Cache
	log    *zap.Logger
}

type DocumentLoaderOption func(*DocumentLoader)

func WithDocumentLogger(log *zap.Logger) DocumentLoaderOption {
	return func(l *DocumentLoader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewDocumentLoader creates a document loader whose parse cache holds up to
// cacheSize documents. A non-positive size uses the default.
func NewDocumentLoader(cacheSize int, opts ...DocumentLoaderOption) (*DocumentLoader, error) {
	if cacheSize <= 0 {
		cacheSize = defaultParseCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}
	l := &DocumentLoader{
		parsed: cache,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load reads the local documents and the external fragment documents. A
// file matched by both sets is external. When s is not nil the combined set
// is validated against it. Local documents come first, each set in match
// order.
func (l *DocumentLoader) Load(ctx context.Context, s *schema.Schema, local, external config.Documents) ([]*documents.Document, error) {
	externalFiles, err := expandGlobs(external.Include, external.Exclude)
	if err != nil {
		return nil, fmt.Errorf("expanding external fragments: %w", err)
	}
	isExternal := make(map[string]bool, len(externalFiles))
	for _, path := range externalFiles {
		isExternal[path] = true
	}

	localFiles, err := expandGlobs(local.Include, local.Exclude)
	if err != nil {
		return nil, fmt.Errorf("expanding documents: %w", err)
	}

	var docs []*documents.Document
	var parsed []*ast.QueryDocument
	load := func(path string, markExternal bool) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading document %s: %w", path, err)
		}
		doc, astDoc, err := l.parse(path, string(content))
		if err != nil {
			return err
		}
		if markExternal {
			doc.MarkExternal()
		}
		docs = append(docs, doc)
		parsed = append(parsed, astDoc)
		return nil
	}

	for _, path := range localFiles {
		if isExternal[path] {
			continue
		}
		if err := load(path, false); err != nil {
			return nil, err
		}
	}
	for _, path := range externalFiles {
		if err := load(path, true); err != nil {
			return nil, err
		}
	}

	if s != nil {
		if err := Validate(s, parsed...); err != nil {
			return nil, err
		}
	}

	l.log.Debug("documents loaded",
		zap.Int("local", len(docs)-countExternal(docs)),
		zap.Int("external", countExternal(docs)),
	)
	return docs, nil
}

// LoadString parses a document held in memory without validating it
func (l *DocumentLoader) LoadString(content, sourcePath string) (*documents.Document, error) {
	doc, _, err := l.parse(sourcePath, content)
	return doc, err
}

// parse converts content through the parse cache. The cache holds the
// gqlparser AST; every call converts it into a fresh Document.
func (l *DocumentLoader) parse(path, content string) (*documents.Document, *ast.QueryDocument, error) {
	key := path + "\x00" + documents.ComputeHash([]byte(content))

	var astDoc *ast.QueryDocument
	if cached, ok := l.parsed.Get(key); ok {
		astDoc = cached.(*ast.QueryDocument)
	} else {
		var err error
		astDoc, err = parser.ParseQuery(&ast.Source{Name: path, Input: content})
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		l.parsed.Add(key, astDoc)
	}

	doc, err := documents.FromAST(astDoc, path, content)
	if err != nil {
		return nil, nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return doc, astDoc, nil
}

// CacheLen reports how many parsed documents are cached
func (l *DocumentLoader) CacheLen() int {
	return l.parsed.Len()
}

// Validate checks the documents as one set against s
func Validate(s *schema.Schema, docs ...*ast.QueryDocument) error {
	combined := &ast.QueryDocument{}
	for _, doc := range docs {
		combined.Operations = append(combined.Operations, doc.Operations...)
		combined.Fragments = append(combined.Fragments, doc.Fragments...)
	}

	rules := validatorrules.NewDefaultRules()
	for _, name := range crossFileRules {
		rules.RemoveRule(name)
	}

	errs := validator.ValidateWithRules(s.Raw(), combined, rules)
	errs = append(errs, uniqueOperationNames(combined.Operations)...)
	if len(errs) > 0 {
		return fmt.Errorf("validating documents: %w", errs)
	}
	return nil
}

// uniqueOperationNames reports every repeated named operation at the
// repeat. Anonymous operations are not compared.
func uniqueOperationNames(ops ast.OperationList) gqlerror.List {
	var errs gqlerror.List
	seen := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op.Name == "" {
			continue
		}
		if seen[op.Name] {
			errs = append(errs, gqlerror.ErrorPosf(op.Position, `There can be only one operation named "%s".`, op.Name))
		}
		seen[op.Name] = true
	}
	return errs
}

// expandGlobs returns the document files matched by includes and not by
// excludes, deduplicated in match order. Patterns support "**".
func expandGlobs(includes, excludes []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range includes {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			if seen[path] || !isDocumentFile(path) {
				continue
			}
			excluded, err := shouldExclude(path, excludes)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}
	return files, nil
}

func shouldExclude(path string, excludes []string) (bool, error) {
	for _, pattern := range excludes {
		matched, err := doublestar.PathMatch(pattern, path)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".gql":
		return true
	default:
		return false
	}
}

func countExternal(docs []*documents.Document) int {
	n := 0
	for _, doc := range docs {
		if doc.External {
			n++
		}
	}
	return n
}
