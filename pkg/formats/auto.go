package formats

import "github.com/leapstack-labs/textnb/pkg/dialect"

// KernelExtension returns the script extension declared by the notebook
// kernel (language_info.file_extension), or "" when there is none.
// R kernels declare ".r"; the upper-case ".R" is used instead.
func KernelExtension(meta map[string]any) string {
	info, ok := meta["language_info"].(map[string]any)
	if !ok {
		return ""
	}
	ext, _ := info["file_extension"].(string)
	if ext == ".r" {
		return ".R"
	}
	return ext
}

// ResolveAuto returns a copy of list where every auto extension is replaced
// by the kernel extension of the notebook.
func (p *Parser) ResolveAuto(list List, meta map[string]any) (List, error) {
	out := make(List, len(list))
	copy(out, list)

	var ext string
	for i := range out {
		if !out[i].IsAuto() {
			continue
		}
		if ext == "" {
			ext = KernelExtension(meta)
			if ext == "" {
				return nil, &UnresolvedAutoExtensionError{Spec: out[i].String()}
			}
			if !p.reg.IsNotebookExtension(ext) {
				return nil, &dialect.UnknownExtensionError{
					Extension: ext,
					Known:     p.reg.Extensions(),
				}
			}
		}
		out[i].Extension = ext
	}
	return out, nil
}
