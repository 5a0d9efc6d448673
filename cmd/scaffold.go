package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/egeskov-group/odooctl/internal/scaffolding"
)

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Tools for creating Odoo modules",
	Long: `A series of commands to assist with creating Odoo modules: module
skeletons, controllers, models, data files and views.`,
}

var scaffoldModuleCmd = &cobra.Command{
	Use:   "module NAME",
	Short: "Scaffold a new Odoo module in the current directory",
	Long: `Scaffolds a new Odoo module in the current directory with the given
technical name, including a __manifest__.py with sensible defaults.
The flag set determines exactly which directories and files are
produced.`,
	Args: cobra.ExactArgs(1),
	RunE: runScaffoldModule,
}

var scaffoldControllerCmd = &cobra.Command{
	Use:   "controller MODULE [NAME]",
	Short: "Scaffold a controller inside an existing module",
	Long: `Scaffolds a new controller in the given module under controllers/ and
appends the import to controllers/__init__.py. If NAME is omitted the
module name is used; pass NAME when overriding or extending another
module's controller.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runScaffoldController,
}

var scaffoldDataCmd = &cobra.Command{
	Use:   "data MODULE MODEL",
	Short: "Scaffold a data XML file inside an existing module",
	Long: `Scaffolds a data XML file for the given model under data/, containing
an empty record element with basic assumed fields.`,
	Args: cobra.ExactArgs(2),
	RunE: runScaffoldData,
}

var scaffoldModelCmd = &cobra.Command{
	Use:   "model MODULE NAME",
	Short: "Scaffold a model inside an existing module",
	Long: `Scaffolds a new model in the given module under models/ (or wizard/
for transient models), appends the import to the package __init__.py
and adds a basic access rule to security/ir.model.access.csv.`,
	Args: cobra.ExactArgs(2),
	RunE: runScaffoldModel,
}

var scaffoldViewCmd = &cobra.Command{
	Use:   "view MODULE MODEL",
	Short: "Scaffold views for a model inside an existing module",
	Long: `Scaffolds a set of views for the given model under views/. If the
view file already exists the requested view partials are appended to
it; for that to work the file must contain at least one <record>
element. Without type flags all three view types are generated.`,
	Args: cobra.ExactArgs(2),
	RunE: runScaffoldView,
}

var (
	scaffoldDepends     string
	scaffoldOdooVersion string
	scaffoldControllers bool
	scaffoldData        bool
	scaffoldModels      bool
	scaffoldStatic      bool
	scaffoldReports     bool
	scaffoldViews       bool
	scaffoldWizards     bool
	scaffoldAll         bool
	scaffoldApp         bool

	scaffoldModelTransient  bool
	scaffoldModelParent     string
	scaffoldModelImplements string

	scaffoldViewForm   bool
	scaffoldViewList   bool
	scaffoldViewSearch bool
)

func init() {
	rootCmd.AddCommand(scaffoldCmd)
	scaffoldCmd.AddCommand(scaffoldModuleCmd)
	scaffoldCmd.AddCommand(scaffoldControllerCmd)
	scaffoldCmd.AddCommand(scaffoldDataCmd)
	scaffoldCmd.AddCommand(scaffoldModelCmd)
	scaffoldCmd.AddCommand(scaffoldViewCmd)

	scaffoldModuleCmd.Flags().StringVar(&scaffoldDepends, "depends", "base", "Dependencies, separated by comma")
	scaffoldModuleCmd.Flags().StringVar(&scaffoldOdooVersion, "odoo-version", "", "Odoo version to create the module for (defaults to config)")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldControllers, "controllers", false, "Scaffold the controllers package with an empty controller named after the module")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldData, "data", false, "Scaffold an empty directory for data files")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldModels, "models", false, "Scaffold the models package and a security/ir.model.access.csv file")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldStatic, "static", false, "Scaffold the static folder including src and description")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldReports, "reports", false, "Scaffold the report package and a security/ir.model.access.csv file")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldViews, "views", false, "Scaffold an empty views directory")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldWizards, "wizards", false, "Scaffold the wizard package and a security/ir.model.access.csv file")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldAll, "all", false, "Scaffold all of the various parts of the module")
	scaffoldModuleCmd.Flags().BoolVar(&scaffoldApp, "app", false, "Mark the module as an Odoo App")

	scaffoldModelCmd.Flags().BoolVar(&scaffoldModelTransient, "transient", false, "Use models.TransientModel and place the model in wizard/ instead of models/")
	scaffoldModelCmd.Flags().StringVar(&scaffoldModelParent, "parent", "", `Parent model to inherit from, such as "sale.order"`)
	scaffoldModelCmd.Flags().StringVar(&scaffoldModelImplements, "implements", "", `Comma-separated models and mixins to implement, such as "mail.thread"`)

	scaffoldViewCmd.Flags().BoolVar(&scaffoldViewForm, "form", false, "Generate a form view")
	scaffoldViewCmd.Flags().BoolVar(&scaffoldViewList, "list", false, "Generate a list view")
	scaffoldViewCmd.Flags().BoolVar(&scaffoldViewSearch, "search", false, "Generate a search view")
}

func newGenerator() *scaffolding.Generator {
	return scaffolding.NewGenerator(newRenderer(), appLogger)
}

func runScaffoldModule(cmd *cobra.Command, args []string) error {
	odooVersion := scaffoldOdooVersion
	if odooVersion == "" {
		odooVersion = appConfig.OdooVersion
	}

	opts := scaffolding.ModuleOptions{
		Name:        args[0],
		Depends:     splitList(scaffoldDepends),
		OdooVersion: odooVersion,
		Author:      appConfig.Author,
		License:     appConfig.License,
		Controllers: scaffoldControllers,
		Data:        scaffoldData,
		Models:      scaffoldModels,
		Static:      scaffoldStatic,
		Reports:     scaffoldReports,
		Views:       scaffoldViews,
		Wizards:     scaffoldWizards,
		Application: scaffoldApp,
	}
	if scaffoldAll {
		opts.EnableAll()
	}

	if err := newGenerator().Module(cmd.Context(), ".", opts); err != nil {
		return err
	}
	fmt.Printf("The module, %s, has been scaffolded. Happy developing :)\n", opts.Name)
	return nil
}

func runScaffoldController(cmd *cobra.Command, args []string) error {
	module := args[0]
	name := ""
	if len(args) > 1 {
		name = args[1]
	}

	if err := newGenerator().Controller(cmd.Context(), module, name); err != nil {
		return err
	}
	if name == "" {
		name = module
	}
	fmt.Printf("The controller, %s, has been scaffolded in module %s. Happy developing :)\n", name, module)
	return nil
}

func runScaffoldData(cmd *cobra.Command, args []string) error {
	module, model := args[0], args[1]
	if err := newGenerator().Data(cmd.Context(), module, model); err != nil {
		return err
	}
	fmt.Printf("The data file for model, %s, has been scaffolded in module %s. Happy developing :)\n", model, module)
	return nil
}

func runScaffoldModel(cmd *cobra.Command, args []string) error {
	module, name := args[0], args[1]
	opts := scaffolding.ModelOptions{
		Transient:  scaffoldModelTransient,
		Parent:     scaffoldModelParent,
		Implements: splitList(scaffoldModelImplements),
	}
	if err := newGenerator().Model(cmd.Context(), module, name, opts); err != nil {
		return err
	}
	fmt.Printf("The model, %s, has been scaffolded in module %s. Happy developing :)\n", name, module)
	return nil
}

func runScaffoldView(cmd *cobra.Command, args []string) error {
	module, model := args[0], args[1]
	opts := scaffolding.ViewOptions{
		Form:   scaffoldViewForm,
		List:   scaffoldViewList,
		Search: scaffoldViewSearch,
	}
	viewFile, err := newGenerator().Views(cmd.Context(), module, model, opts)
	if err != nil {
		return err
	}
	fmt.Printf("The views in %s, for model %s have been scaffolded in module %s. Happy developing :)\n", viewFile, model, module)
	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
