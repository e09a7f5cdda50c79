package resolver

import (
	"time"

	"github.com/wolfeidau/bundlecfg/internal/entries"
	"github.com/wolfeidau/bundlecfg/internal/mode"
)

// StyleHandling controls where compiled style sheets end up.
type StyleHandling string

const (
	// StylesExtract writes style sheets next to the scripts as [name].css.
	StylesExtract StyleHandling = "extract"
	// StylesInject keeps style sheets in memory for the dev server to push.
	StylesInject StyleHandling = "inject"
)

// SourceMap selects source map output.
type SourceMap string

const (
	SourceMapNone   SourceMap = "none"
	SourceMapInline SourceMap = "inline"
)

// Loader names the way the bundler treats a matched file.
type Loader string

const (
	LoaderFile        Loader = "file"
	LoaderCSS         Loader = "css"
	LoaderLocalCSS    Loader = "local-css"
	LoaderJSX         Loader = "jsx"
	LoaderTS          Loader = "ts"
	LoaderTSX         Loader = "tsx"
	LoaderSass        Loader = "sass"
	LoaderUnsupported Loader = "unsupported"
)

// Config is the resolved, mode-specific configuration handed to the bundler.
type Config struct {
	Mode    mode.Mode   `json:"mode" yaml:"mode"`
	Root    string      `json:"root" yaml:"root"`
	Entries entries.Map `json:"entries" yaml:"entries"`
	Output  Output      `json:"output" yaml:"output"`

	Optimization Optimization  `json:"optimization" yaml:"optimization"`
	Styles       StyleHandling `json:"styles" yaml:"styles"`
	SourceMap    SourceMap     `json:"sourceMap" yaml:"sourceMap"`
	LiveReload   bool          `json:"liveReload" yaml:"liveReload"`

	Target     string   `json:"target" yaml:"target"`
	Extensions []string `json:"extensions" yaml:"extensions"`
	Rules      []Rule   `json:"rules" yaml:"rules"`

	DevServer   *DevServer   `json:"devServer,omitempty" yaml:"devServer,omitempty"`
	VersionFile *VersionFile `json:"versionFile,omitempty" yaml:"versionFile,omitempty"`
}

type Output struct {
	// Absolute directory bundles are written to
	Path string `json:"path" yaml:"path"`
	// URL prefix for emitted assets, empty means relative
	PublicPath string `json:"publicPath,omitempty" yaml:"publicPath,omitempty"`
	Filename   string `json:"filename" yaml:"filename"`
	AssetNames string `json:"assetNames" yaml:"assetNames"`
}

type Optimization struct {
	Minify  bool   `json:"minify" yaml:"minify"`
	NodeEnv string `json:"nodeEnv" yaml:"nodeEnv"`
}

// Rule maps a set of file extensions to a loader. Modules scopes class names
// locally for sources outside vendor directories.
type Rule struct {
	Name       string   `json:"name" yaml:"name"`
	Extensions []string `json:"extensions" yaml:"extensions"`
	Loader     Loader   `json:"loader" yaml:"loader"`
	Modules    bool     `json:"modules,omitempty" yaml:"modules,omitempty"`
}

type DevServer struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	// Public origin, e.g. https://dev.example.com
	Public      string `json:"public" yaml:"public"`
	ContentBase string `json:"contentBase" yaml:"contentBase"`
	PublicPath  string `json:"publicPath" yaml:"publicPath"`
	Compress    bool   `json:"compress" yaml:"compress"`
	CORS        CORS   `json:"cors" yaml:"cors"`

	TLS *TLSMaterial `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type CORS struct {
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
	AllowedMethods []string `json:"allowedMethods" yaml:"allowedMethods"`
	AllowedHeaders []string `json:"allowedHeaders" yaml:"allowedHeaders"`
}

// TLSMaterial holds certificate material read at assembly time. The raw bytes
// never leave the process; only the source paths are printed.
type TLSMaterial struct {
	CertFile string `json:"certFile" yaml:"certFile"`
	KeyFile  string `json:"keyFile" yaml:"keyFile"`
	CAFile   string `json:"caFile,omitempty" yaml:"caFile,omitempty"`

	Cert []byte `json:"-" yaml:"-"`
	Key  []byte `json:"-" yaml:"-"`
	CA   []byte `json:"-" yaml:"-"`
}

// VersionFile describes the build-metadata file written after a production build.
type VersionFile struct {
	Path        string    `json:"path" yaml:"path"`
	BuildString int64     `json:"buildString" yaml:"buildString"`
	BuildDate   time.Time `json:"buildDate" yaml:"buildDate"`
}
