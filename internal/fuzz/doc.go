// Package fuzztests houses Go fuzz harnesses that exercise the analysis
// pipeline (source -> tree-sitter adapter -> declare/hierarchy/resolve). Its
// goal is to smoke test robustness and guard against panics or hangs on
// arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через парсер и семантический анализ.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
