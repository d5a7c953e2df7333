// Package challenge parses the opaque challenge URLs the remote platform
// embeds in checkpoint-required login rejections into structured
// descriptors. Parsing is pure and deterministic; a URL missing either the
// challenge id or the context blob is rejected rather than defaulted.
package challenge
