package dialect

import "sync"

// scriptLanguages lists the script extensions, their language and comment.
var scriptLanguages = []ScriptLanguage{
	{Extension: ".py", Language: "python", Comment: "#"},
	{Extension: ".R", Language: "R", Comment: "#"},
	{Extension: ".r", Language: "R", Comment: "#"},
	{Extension: ".jl", Language: "julia", Comment: "#"},
	{Extension: ".cpp", Language: "c++", Comment: "//"},
	{Extension: ".ss", Language: "scheme", Comment: ";;"},
	{Extension: ".clj", Language: "clojure", Comment: ";;"},
	{Extension: ".scm", Language: "scheme", Comment: ";;"},
	{Extension: ".sh", Language: "bash", Comment: "#"},
	{Extension: ".q", Language: "q", Comment: "/"},
	{Extension: ".m", Language: "matlab", Comment: "%"},
}

// Builtin returns the registry of the builtin dialects.
// It is built on first use and shared afterwards.
var Builtin = sync.OnceValue(func() *Registry {
	return NewBuiltinBuilder().MustBuild()
})

// NewBuiltinBuilder returns a builder preloaded with the builtin dialects,
// so callers can extend the table before building their own registry.
func NewBuiltinBuilder() *Builder {
	b := NewBuilder()
	for _, lang := range scriptLanguages {
		b.Language(lang.Extension, lang.Language, lang.Comment)
	}

	// Markup dialects: one per extension.
	b.Add(
		// 1.0: initial version
		Descriptor{Name: "markdown", Extension: ".md", Current: "1.0", Markup: true},
		Descriptor{Name: "rmarkdown", Extension: ".Rmd", Current: "1.0", Markup: true},
	)

	// R scripts in knitr::spin style, registered first so they are the
	// default for .r and .R.
	for _, ext := range []string{".r", ".R"} {
		b.Add(Descriptor{Name: "spin", Extension: ext, HeaderPrefix: "#'", Language: "R", Current: "1.0"})
	}

	// Cell-marker dialects, grouped by dialect so light stays the default.
	for _, lang := range scriptLanguages {
		b.Add(lightDescriptor(lang))
	}
	for _, lang := range scriptLanguages {
		b.Add(percentDescriptor(lang, "percent"))
	}
	// hydrogen: percent cells with uncommented magics
	for _, lang := range scriptLanguages {
		b.Add(percentDescriptor(lang, "hydrogen"))
	}

	b.Add(Descriptor{Name: "sphinx", Extension: ".py", HeaderPrefix: "#", Language: "python", Current: "1.1"})

	return b
}

// Script declares an extra script language and registers the light, percent
// and hydrogen dialects for it, light first.
func (b *Builder) Script(ext, language, comment string) *Builder {
	lang := ScriptLanguage{Extension: NormalizeExtension(ext), Language: language, Comment: comment}
	b.Language(lang.Extension, language, comment)
	return b.Add(
		lightDescriptor(lang),
		percentDescriptor(lang, "percent"),
		percentDescriptor(lang, "hydrogen"),
	)
}

// light 1.3: metadata allowed on every cell type
// light 1.2: empty metadata brackets may be omitted
// light 1.1: cells separated by one blank line
func lightDescriptor(lang ScriptLanguage) Descriptor {
	return Descriptor{
		Name: "light", Extension: lang.Extension, HeaderPrefix: lang.Comment, Language: lang.Language,
		Current: "1.3", MinReadable: "1.1",
	}
}

// percent 1.2: magics commented by default
// percent 1.1: [markdown] and [raw] cell markers
func percentDescriptor(lang ScriptLanguage, name string) Descriptor {
	return Descriptor{
		Name: name, Extension: lang.Extension, HeaderPrefix: lang.Comment, Language: lang.Language,
		Current: "1.2", MinReadable: "1.1",
	}
}
