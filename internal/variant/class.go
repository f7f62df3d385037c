package variant

// Mutation class codes.
const (
	ClassMissense     = "M"
	ClassFrameshift   = "F"
	ClassNonsense     = "N"
	ClassProteinDel   = "D"
	ClassProteinIns   = "I"
	ClassProtAltering = "P"
	ClassSilent       = "L"
	ClassSplice       = "S"
	ClassSpliceRegion = "SR"
	ClassIntron       = "Intron"
	ClassUTR5         = "Utr5"
	ClassUTR3         = "Utr3"
	ClassNoncoding    = "noncoding"
	ClassStartLost    = "StartLost"
	ClassStopLost     = "StopLost"
	ClassFusion       = "Fuserna"
	ClassSV           = "SV"
	ClassITD          = "ITD"
	ClassDel          = "DEL"
	ClassNLoss        = "NLOSS"
	ClassCLoss        = "CLOSS"
	ClassUnknown      = "X"
)

var classLabels = map[string]string{
	ClassMissense:     "MISSENSE",
	ClassFrameshift:   "FRAMESHIFT",
	ClassNonsense:     "NONSENSE",
	ClassProteinDel:   "PROTEINDEL",
	ClassProteinIns:   "PROTEININS",
	ClassProtAltering: "PROTEINALTERING",
	ClassSilent:       "SILENT",
	ClassSplice:       "SPLICE",
	ClassSpliceRegion: "SPLICE_REGION",
	ClassIntron:       "INTRON",
	ClassUTR5:         "5' UTR",
	ClassUTR3:         "3' UTR",
	ClassNoncoding:    "NONCODING",
	ClassStartLost:    "STARTLOST",
	ClassStopLost:     "STOPLOST",
	ClassFusion:       "Fusion transcript",
	ClassSV:           "Structural variation",
	ClassITD:          "ITD",
	ClassDel:          "Deletion",
	ClassNLoss:        "N-terminus loss",
	ClassCLoss:        "C-terminus loss",
	ClassUnknown:      "UNKNOWN",
}

// ClassLabel returns the display label of a class code, or the code itself.
func ClassLabel(code string) string {
	if l, ok := classLabels[code]; ok {
		return l
	}
	return code
}

// mafClassification maps MAF Variant_Classification values to class codes.
var mafClassification = map[string]string{
	"Missense_Mutation":      ClassMissense,
	"Nonsense_Mutation":      ClassNonsense,
	"Frame_Shift_Del":        ClassFrameshift,
	"Frame_Shift_Ins":        ClassFrameshift,
	"In_Frame_Del":           ClassProteinDel,
	"In_Frame_Ins":           ClassProteinIns,
	"Splice_Site":            ClassSplice,
	"Splice_Region":          ClassSpliceRegion,
	"Silent":                 ClassSilent,
	"Intron":                 ClassIntron,
	"5'UTR":                  ClassUTR5,
	"3'UTR":                  ClassUTR3,
	"Translation_Start_Site": ClassStartLost,
	"Nonstop_Mutation":       ClassStopLost,
	"RNA":                    ClassNoncoding,
	"lincRNA":                ClassNoncoding,
	"Fusion":                 ClassFusion,
}

// ClassFromMAF converts a MAF Variant_Classification to a class code.
func ClassFromMAF(classification string) string {
	if c, ok := mafClassification[classification]; ok {
		return c
	}
	return ClassUnknown
}
