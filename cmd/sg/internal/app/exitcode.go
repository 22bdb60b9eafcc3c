package app

// Exit codes, spec.md §6: "0 success; 1 diagnostics found; 2 missing
// language/rule/project; 3 test failure; 5 configuration I/O error;
// 8 parse error; 17 artefact already exists; 22 insufficient args."
const (
	ExitSuccess            = 0
	ExitDiagnosticsFound   = 1
	ExitMissingLangOrRule  = 2
	ExitTestFailure        = 3
	ExitConfigIOError      = 5
	ExitParseError         = 8
	ExitArtefactExists     = 17
	ExitInsufficientArgs   = 22
)
