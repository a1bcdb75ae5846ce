package reconstruct

// Heading styles.
const (
	HeadingSetext = "setext"
	HeadingATX    = "atx"
)

// Code block styles.
const (
	CodeIndented = "indented"
	CodeFenced   = "fenced"
)

// Link styles.
const (
	LinkInlined    = "inlined"
	LinkReferenced = "referenced"
)

// Reference link styles.
const (
	RefFull      = "full"
	RefCollapsed = "collapsed"
	RefShortcut  = "shortcut"
)

// Options controls the markdown the converter writes.
type Options struct {
	HeadingStyle       string
	HR                 string
	BulletListMarker   string
	CodeBlockStyle     string
	Fence              string
	EmDelimiter        string
	StrongDelimiter    string
	LinkStyle          string
	LinkReferenceStyle string
	BR                 string
}

// DefaultOptions returns the converter defaults: setext headings, indented
// code and "_" emphasis.
func DefaultOptions() Options {
	return Options{
		HeadingStyle:       HeadingSetext,
		HR:                 "* * *",
		BulletListMarker:   "*",
		CodeBlockStyle:     CodeIndented,
		Fence:              "```",
		EmDelimiter:        "_",
		StrongDelimiter:    "**",
		LinkStyle:          LinkInlined,
		LinkReferenceStyle: RefFull,
		BR:                 "  ",
	}
}

// SiteOptions returns the options used to recover section markdown.
func SiteOptions() Options {
	o := DefaultOptions()
	o.HeadingStyle = HeadingATX
	o.CodeBlockStyle = CodeFenced
	o.BulletListMarker = "*"
	o.EmDelimiter = "*"
	o.StrongDelimiter = "**"
	return o
}

// withDefaults fills empty fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	set := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	set(&o.HeadingStyle, d.HeadingStyle)
	set(&o.HR, d.HR)
	set(&o.BulletListMarker, d.BulletListMarker)
	set(&o.CodeBlockStyle, d.CodeBlockStyle)
	set(&o.Fence, d.Fence)
	set(&o.EmDelimiter, d.EmDelimiter)
	set(&o.StrongDelimiter, d.StrongDelimiter)
	set(&o.LinkStyle, d.LinkStyle)
	set(&o.LinkReferenceStyle, d.LinkReferenceStyle)
	set(&o.BR, d.BR)
	return o
}
