package constant

// Fragment types recognized by the retrieval filters.
const (
	FragmentTypePdf          = "pdf"
	FragmentTypeText         = "text"
	FragmentTypeOffice       = "office"
	FragmentTypeHwp          = "hwp"
	FragmentTypeHwpx         = "hwpx"
	FragmentTypeTableRow     = "table_row"
	FragmentTypeImageCaption = "image_caption"
)

// Asset types.
const (
	AssetTypeImage = "image"
	AssetTypeTable = "table"
)

// ProseFragmentTypes lists the fragment types produced by prose chunking,
// i.e. the prose retrieval slice.
func ProseFragmentTypes() []string {
	return []string{
		FragmentTypePdf,
		FragmentTypeText,
		FragmentTypeOffice,
		FragmentTypeHwpx,
		FragmentTypeHwp,
	}
}

// RAG answer modes returned to the caller.
const (
	RagModeSmalltalk = "smalltalk"
	RagModePlain     = "rag-plain"
	RagModeTable     = "rag-table"
	RagModeGeneral   = "general"
)
