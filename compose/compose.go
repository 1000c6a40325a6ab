// Package compose implements the include composer: it reads a top-level
// document, recursively composes its includes via deep merge, resolves the
// aggregate to a fixed point, and transforms the result by
// source/destination node paths.
package compose

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/signadot/cfgtree/cfgerrors"
	"github.com/signadot/cfgtree/cfglog"
	"github.com/signadot/cfgtree/ir"
	"github.com/signadot/cfgtree/jsonval"
	"github.com/signadot/cfgtree/merge"
	"github.com/signadot/cfgtree/ndpath"
	"github.com/signadot/cfgtree/reader"
	"github.com/signadot/cfgtree/resolve"
)

var log = cfglog.For(cfglog.CategoryCompose)

// includeType is the only recognized value of an include entry's "type".
const includeType = "CppConfigFramework"

// Options configures a Read invocation, mirroring the functional-options
// shape used elsewhere in cfgtree.
type Options struct {
	MaxCycles int
}

// Option mutates an Options value.
type Option func(*Options)

// WithMaxCycles overrides the resolver's iteration cap (default
// resolve.DefaultMaxCycles).
func WithMaxCycles(n int) Option {
	return func(o *Options) { o.MaxCycles = n }
}

func defaultOptions() Options {
	return Options{MaxCycles: resolve.DefaultMaxCycles}
}

// Read loads filePath (resolved against workingDir if relative), recursively
// composes its includes, resolves the aggregate, and transforms it by
// source/destination node paths.
func Read(filePath, workingDir, source, destination string, opts ...Option) (*ir.Node, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := ndpath.ValidatePath(source); err != nil {
		return nil, err
	}
	if err := ndpath.ValidatePath(destination); err != nil {
		return nil, err
	}

	root, err := compose(filePath, workingDir, map[string]bool{}, o.MaxCycles)
	if err != nil {
		return nil, err
	}
	if err := resolve.Resolve(root, o.MaxCycles); err != nil {
		return nil, err
	}
	return transform(root, source, destination)
}

// compose reads one document (top-level or an include) and returns its
// unresolved aggregate node: included documents merged in order, then the
// document's own config merged on top. active tracks canonicalized file
// paths currently being read, on the same call stack, to reject include
// cycles.
func compose(filePath, workingDir string, active map[string]bool, maxCycles int) (*ir.Node, error) {
	resolvedPath := filePath
	if !filepath.IsAbs(resolvedPath) {
		resolvedPath = filepath.Join(workingDir, resolvedPath)
	}
	canonical, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, cfgerrors.NewIo(resolvedPath, err)
	}
	if active[canonical] {
		return nil, cfgerrors.NewSchema(resolvedPath, "include cycle detected at "+canonical)
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, cfgerrors.NewIo(resolvedPath, err)
	}
	docVal, err := jsonval.Decode(data)
	if err != nil {
		return nil, err
	}
	if docVal.Kind != jsonval.KindObject {
		return nil, cfgerrors.NewSchema(resolvedPath, "top-level JSON value must be an object")
	}

	childActive := make(map[string]bool, len(active)+1)
	for k := range active {
		childActive[k] = true
	}
	childActive[canonical] = true

	docDir := filepath.Dir(resolvedPath)
	aggregate, err := readIncludes(docVal, docDir, childActive, maxCycles)
	if err != nil {
		return nil, err
	}

	configVal, hasConfig := docVal.Lookup("config")
	var configNode *ir.Node
	switch {
	case !hasConfig || configVal.Kind == jsonval.KindNull:
		configNode = ir.NewObject()
	case configVal.Kind == jsonval.KindObject:
		configNode, err = reader.Read(configVal, "/")
		if err != nil {
			return nil, err
		}
	default:
		return nil, cfgerrors.NewSchema(resolvedPath, "\"config\" must be absent, null, or an object")
	}

	if err := merge.ApplyObject(aggregate, configNode); err != nil {
		return nil, err
	}
	log.Debugf("composed %s (%d top-level members)", resolvedPath, len(aggregate.MemberNames()))
	return aggregate, nil
}

// readIncludes reads a document's "includes" member: an absent or null
// value yields an empty aggregate; otherwise it must be a JSON array of
// objects, each recursively read and merged onto the running aggregate in
// order (later includes win).
func readIncludes(docVal *jsonval.Value, docDir string, active map[string]bool, maxCycles int) (*ir.Node, error) {
	aggregate := ir.NewObject()
	includesVal, has := docVal.Lookup("includes")
	if !has || includesVal.Kind == jsonval.KindNull {
		return aggregate, nil
	}
	if includesVal.Kind != jsonval.KindArray {
		return nil, cfgerrors.NewSchema(docDir, "\"includes\" must be an array")
	}

	for i, entry := range includesVal.Array {
		if entry.Kind != jsonval.KindObject {
			return nil, cfgerrors.NewSchema(docDir, "include entry must be an object")
		}

		typeVal, hasType := entry.Lookup("type")
		if hasType {
			if typeVal.Kind != jsonval.KindString || typeVal.String != includeType {
				return nil, cfgerrors.NewSchema(docDir, "unknown include type at index "+strconv.Itoa(i))
			}
		}

		filePathVal, hasFilePath := entry.Lookup("file_path")
		if !hasFilePath || filePathVal.Kind != jsonval.KindString {
			return nil, cfgerrors.NewSchema(docDir, "include entry requires string \"file_path\"")
		}

		sourceNode := ndpath.Root
		if sv, ok := entry.Lookup("source_node"); ok && sv.Kind != jsonval.KindNull {
			if sv.Kind != jsonval.KindString {
				return nil, cfgerrors.NewSchema(docDir, "\"source_node\" must be a string")
			}
			sourceNode = sv.String
		}
		destinationNode := ndpath.Root
		if dv, ok := entry.Lookup("destination_node"); ok && dv.Kind != jsonval.KindNull {
			if dv.Kind != jsonval.KindString {
				return nil, cfgerrors.NewSchema(docDir, "\"destination_node\" must be a string")
			}
			destinationNode = dv.String
		}
		if err := ndpath.ValidatePath(sourceNode); err != nil {
			return nil, err
		}
		if err := ndpath.ValidatePath(destinationNode); err != nil {
			return nil, err
		}

		childRoot, err := compose(filePathVal.String, docDir, active, maxCycles)
		if err != nil {
			return nil, err
		}
		if err := resolve.Resolve(childRoot, maxCycles); err != nil {
			return nil, err
		}
		transformed, err := transform(childRoot, sourceNode, destinationNode)
		if err != nil {
			return nil, err
		}
		if err := merge.ApplyObject(aggregate, transformed); err != nil {
			return nil, err
		}
	}
	return aggregate, nil
}

// transform extracts the subtree at source, then re-homes it under
// destination via a freshly built chain of Objects.
func transform(root *ir.Node, source, destination string) (*ir.Node, error) {
	if source == ndpath.Root && destination == ndpath.Root {
		return root, nil
	}

	var sub *ir.Node
	if source == ndpath.Root {
		sub = root
	} else {
		found, ok := root.NodeAtPath(source)
		if !ok {
			return nil, cfgerrors.NewResolution(source, "source node not found", nil)
		}
		sub = found
	}
	clone := sub.Clone()

	if destination == ndpath.Root {
		return clone, nil
	}

	names, err := splitPath(destination)
	if err != nil {
		return nil, err
	}
	leaf := clone
	for i := len(names) - 1; i >= 0; i-- {
		parent := ir.NewObject()
		if err := parent.SetMember(names[i], leaf); err != nil {
			return nil, err
		}
		leaf = parent
	}
	return leaf, nil
}

func splitPath(p string) ([]string, error) {
	if err := ndpath.ValidatePath(p); err != nil {
		return nil, err
	}
	body := p
	if ndpath.IsAbsolute(p) {
		body = p[1:]
	}
	var names []string
	start := 0
	for i := 0; i <= len(body); i++ {
		if i == len(body) || body[i] == '/' {
			names = append(names, body[start:i])
			start = i + 1
		}
	}
	return names, nil
}
