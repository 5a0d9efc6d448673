package scaffolding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/validation"
)

// ViewOptions selects which view types to generate. If none is set,
// all three are generated.
type ViewOptions struct {
	Form   bool
	List   bool
	Search bool
}

func (o *ViewOptions) applyDefaults() {
	if !o.Form && !o.List && !o.Search {
		o.Form = true
		o.List = true
		o.Search = true
	}
}

var viewPartials = []struct {
	enabled  func(ViewOptions) bool
	template string
}{
	{func(o ViewOptions) bool { return o.Form }, "skel/module/views/form.xml.tmpl"},
	{func(o ViewOptions) bool { return o.List }, "skel/module/views/tree.xml.tmpl"},
	{func(o ViewOptions) bool { return o.Search }, "skel/module/views/search.xml.tmpl"},
}

// Views scaffolds the selected views for model into
// moduleDir/views/<model>_views.xml. If the file already exists the
// rendered partials are merged into it; otherwise a full view file is
// rendered fresh. Returns the path of the view file.
func (g *Generator) Views(ctx context.Context, moduleDir, model string, opts ViewOptions) (string, error) {
	if err := validation.ValidateLocalPath(moduleDir); err != nil {
		return "", cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid module path")
	}
	if err := validation.ValidateModelName(model); err != nil {
		return "", cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid model name")
	}
	opts.applyDefaults()

	viewsDir := filepath.Join(moduleDir, "views")
	if err := os.MkdirAll(viewsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating views directory: %w", err)
	}
	viewFile := filepath.Join(viewsDir, Underscore(model)+"_views.xml")

	data := map[string]string{
		"Module": filepath.Base(moduleDir),
		"Model":  model,
	}

	var fragments []string
	for _, partial := range viewPartials {
		if !partial.enabled(opts) {
			continue
		}
		fragment, err := g.renderer.Render(partial.template, data)
		if err != nil {
			return "", cerrors.Wrap(err, cerrors.CodeScaffoldRender, "scaffold",
				"rendering view partial %s", partial.template)
		}
		fragments = append(fragments, fragment)
	}

	if _, err := os.Stat(viewFile); err == nil {
		if err := MergeViewFile(viewFile, fragments); err != nil {
			return "", err
		}
		g.logger.Info(ctx, "views merged", "model", model, "path", viewFile)
		return viewFile, nil
	}

	content, err := g.renderer.Render("skel/module/views/model_views.xml.tmpl",
		map[string]interface{}{
			"Module":    data["Module"],
			"Model":     model,
			"Fragments": fragments,
		})
	if err != nil {
		return "", cerrors.Wrap(err, cerrors.CodeScaffoldRender, "scaffold", "rendering view file")
	}
	if err := os.WriteFile(viewFile, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", viewFile, err)
	}

	g.logger.Info(ctx, "views scaffolded", "model", model, "path", viewFile)
	return viewFile, nil
}

// MergeViewFile appends the rendered XML fragments to an existing view
// file as siblings of its first <record> element. The merge is
// idempotent: a fragment whose record id already exists in the file is
// skipped. If the file has no <record> anchor it is left unmodified
// and an error is returned.
func MergeViewFile(path string, fragments []string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return cerrors.Wrap(err, cerrors.CodeViewParse, "scaffold", "parsing view file %s", path)
	}

	records := doc.FindElements("//record")
	if len(records) == 0 {
		return cerrors.New(cerrors.CodeViewAnchor, "scaffold",
			"malformed view file %s: no <record> element to anchor on", path).
			WithSuggestions("add at least one <record> element, or delete the file to scaffold it fresh")
	}
	parent := records[0].Parent()

	existing := make(map[string]bool, len(records))
	for _, record := range records {
		if id := record.SelectAttrValue("id", ""); id != "" {
			existing[id] = true
		}
	}

	for _, fragment := range fragments {
		fragDoc := etree.NewDocument()
		if err := fragDoc.ReadFromString(fragment); err != nil {
			return cerrors.Wrap(err, cerrors.CodeViewParse, "scaffold", "parsing rendered view partial")
		}
		root := fragDoc.Root()
		if root == nil {
			return cerrors.New(cerrors.CodeViewParse, "scaffold", "rendered view partial has no root element")
		}
		if id := root.SelectAttrValue("id", ""); id != "" && existing[id] {
			continue
		}
		parent.AddChild(root.Copy())
	}

	doc.Indent(4)
	doc.WriteSettings.CanonicalEndTags = false

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewriting %s: %w", path, err)
	}
	defer out.Close()
	if _, err := doc.WriteTo(out); err != nil {
		return fmt.Errorf("writing merged views: %w", err)
	}
	return nil
}
