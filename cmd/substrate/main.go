// Substrate CLI - runs hosted-language programs on the execution kernel.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/substrate-lang/substrate/extern"
	"github.com/substrate-lang/substrate/instr"
	"github.com/substrate-lang/substrate/lang/object"
	"github.com/substrate-lang/substrate/lang/pico"
	"github.com/substrate-lang/substrate/lang/slate"
	"github.com/substrate-lang/substrate/manifest"
	"github.com/substrate-lang/substrate/runtime"
	"github.com/substrate-lang/substrate/schema"
	"github.com/substrate-lang/substrate/store"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("substrate")

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (0 = quiet)")
	langFlag := flag.String("lang", "", "Language: slate, pico, or a schema .toml path")
	engineFlag := flag.String("engine", "", "Engine: tree or canonical")
	cacheFlag := flag.String("cache", "", "Compile cache database path")
	noCache := flag.Bool("no-cache", false, "Disable the compile cache")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: substrate [options] <command> [file]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run [file]      Run a program (defaults to the manifest entry)\n")
		fmt.Fprintf(os.Stderr, "  compile <file>  Compile into the cache, print the content hash\n")
		fmt.Fprintf(os.Stderr, "  print <file>    Print the canonical instruction tree\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  substrate run main.sl               # Run a slate program\n")
		fmt.Fprintf(os.Stderr, "  substrate -lang pico run main.pi    # Run a pico program\n")
		fmt.Fprintf(os.Stderr, "  substrate -lang my.toml print x.src # Show compiled form\n")
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := resolveConfig(args[1:], *langFlag, *engineFlag, *cacheFlag, *noCache)
	if err != nil {
		fail(err)
	}

	switch command {
	case "run":
		err = cmdRun(cfg)
	case "compile":
		err = cmdCompile(cfg)
	case "print":
		err = cmdPrint(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// config is the resolved invocation: flags layered over the manifest.
type config struct {
	entry    string
	language string
	engine   string
	cache    string
	backends []string
}

func resolveConfig(args []string, lang, engine, cache string, noCache bool) (*config, error) {
	cfg := &config{
		language: lang,
		engine:   engine,
		cache:    cache,
		backends: []string{"console", "strings", "math"},
	}
	if len(args) > 0 {
		cfg.entry = args[0]
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m != nil {
		log.Infof("using manifest in %s", m.Dir)
		if cfg.entry == "" {
			cfg.entry = m.EntryPath()
		}
		if cfg.language == "" {
			cfg.language = m.Run.Language
		}
		if cfg.engine == "" {
			cfg.engine = m.Run.Engine
		}
		if cfg.cache == "" && m.Cache.Enabled {
			cfg.cache = m.CachePath()
		}
		cfg.backends = m.Run.Backends
	}

	if cfg.entry == "" {
		return nil, fmt.Errorf("no input file and no manifest entry")
	}
	if cfg.language == "" {
		cfg.language = guessLanguage(cfg.entry)
	}
	if cfg.engine == "" {
		if cfg.language == "slate" {
			cfg.engine = "tree"
		} else {
			cfg.engine = "canonical"
		}
	}
	if noCache {
		cfg.cache = ""
	}
	return cfg, nil
}

func guessLanguage(entry string) string {
	switch filepath.Ext(entry) {
	case ".pi":
		return "pico"
	default:
		return "slate"
	}
}

func newEnv(backends []string) (*runtime.Env, error) {
	d := runtime.NewDispatcher()
	for _, b := range backends {
		var err error
		switch b {
		case "console":
			err = extern.RegisterConsole(d, os.Stdout, os.Stdin)
		case "strings":
			err = extern.RegisterStrings(d)
		case "math":
			err = extern.RegisterMath(d)
		default:
			err = fmt.Errorf("unknown backend %q", b)
		}
		if err != nil {
			return nil, err
		}
	}
	return runtime.NewEnv(d), nil
}

// toolchain is a compiled front end for the canonical engine.
type toolchain struct {
	name     string
	compiler *instr.Compiler
	exec     *instr.Executor
}

func canonicalToolchain(language string) (*toolchain, error) {
	var lang *schema.Language
	var hooks instr.Hooks
	switch {
	case language == "pico":
		lang = pico.Schema()
		hooks = pico.Hooks{}
	case strings.HasSuffix(language, ".toml"):
		loaded, err := schema.Load(language)
		if err != nil {
			return nil, err
		}
		lang = loaded
		hooks = object.Hooks{}
	case language == "slate":
		return nil, fmt.Errorf("slate runs on the tree engine; use -engine tree")
	default:
		return nil, fmt.Errorf("unknown language %q", language)
	}
	c, err := instr.NewCompiler(lang)
	if err != nil {
		return nil, err
	}
	return &toolchain{name: lang.Name, compiler: c, exec: instr.NewExecutor(hooks)}, nil
}

func (t *toolchain) compile(cfg *config, src string) (*instr.Program, [32]byte, error) {
	key := store.Key(t.name, src)
	if cfg.cache == "" {
		prog, err := t.compiler.Compile(src)
		return prog, key, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.cache), 0o755); err != nil {
		return nil, key, err
	}
	cache, err := store.Open(cfg.cache)
	if err != nil {
		return nil, key, err
	}
	defer cache.Close()
	prog, hit, err := cache.Compile(t.name, src, t.compiler.Compile)
	if err != nil {
		return nil, key, err
	}
	if hit {
		log.Infof("cache hit for %s", cfg.entry)
	}
	if id, err := cache.RecordRun(key); err == nil {
		log.Infof("run %s", id)
	}
	return prog, key, nil
}

func cmdRun(cfg *config) error {
	src, err := readSource(cfg.entry)
	if err != nil {
		return err
	}
	env, err := newEnv(cfg.backends)
	if err != nil {
		return err
	}

	if cfg.engine == "tree" {
		if cfg.language != "slate" {
			return fmt.Errorf("language %q runs on the canonical engine", cfg.language)
		}
		sl, err := slate.New()
		if err != nil {
			return err
		}
		_, err = sl.Run(src, env)
		return err
	}

	tc, err := canonicalToolchain(cfg.language)
	if err != nil {
		return err
	}
	prog, _, err := tc.compile(cfg, src)
	if err != nil {
		return err
	}
	_, err = tc.exec.Run(prog, env)
	return err
}

func cmdCompile(cfg *config) error {
	src, err := readSource(cfg.entry)
	if err != nil {
		return err
	}
	if cfg.cache == "" {
		cfg.cache = filepath.Join(".substrate", "cache.db")
	}
	tc, err := canonicalToolchain(cfg.language)
	if err != nil {
		return err
	}
	_, key, err := tc.compile(cfg, src)
	if err != nil {
		return err
	}
	fmt.Printf("%x\n", key)
	return nil
}

func cmdPrint(cfg *config) error {
	src, err := readSource(cfg.entry)
	if err != nil {
		return err
	}
	tc, err := canonicalToolchain(cfg.language)
	if err != nil {
		return err
	}
	prog, err := tc.compiler.Compile(src)
	if err != nil {
		return err
	}
	fmt.Print(instr.Print(prog))
	return nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return string(data), nil
}
