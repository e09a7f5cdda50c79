package resolver

// VendorDirs are directory names whose style sheets are treated as global CSS.
var VendorDirs = []string{"node_modules", "bower_components"}

// DefaultRules returns the file-transformation table shared by every mode.
// Modes differ only in how the bundler is told to treat the output.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "assets",
			Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".svg", ".eot", ".ttf", ".woff", ".woff2"},
			Loader:     LoaderFile,
		},
		{
			Name:       "css",
			Extensions: []string{".css"},
			Loader:     LoaderCSS,
		},
		{
			Name:       "css-modules",
			Extensions: []string{".module.css"},
			Loader:     LoaderLocalCSS,
		},
		{
			Name:       "sass",
			Extensions: []string{".scss", ".sass"},
			Loader:     LoaderSass,
			Modules:    true,
		},
		{
			Name:       "less",
			Extensions: []string{".less"},
			Loader:     LoaderUnsupported,
		},
		{
			Name:       "stylus",
			Extensions: []string{".styl"},
			Loader:     LoaderUnsupported,
		},
		{
			Name:       "javascript",
			Extensions: []string{".js", ".jsx"},
			Loader:     LoaderJSX,
		},
		{
			Name:       "typescript",
			Extensions: []string{".ts"},
			Loader:     LoaderTS,
		},
		{
			Name:       "typescript-jsx",
			Extensions: []string{".tsx"},
			Loader:     LoaderTSX,
		},
	}
}
