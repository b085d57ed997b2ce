// Package output writes filterx results.
//
// Tabular results are rendered by a Formatter:
//   - delimited text: unquoted fields joined by a separator, with an optional
//     header row
//   - JSON Lines: one object per row, keys in column order
//   - table: an aligned text table
//
// Sequence records are written with a FastxWriter as FASTA or FASTQ.
//
// Create opens the destination and applies the requested compression:
//
//	w, err := output.Create("out.csv.gz", output.TypeAuto)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	f := output.NewCSVFormatter(w, "\t", true)
//	if err := f.Format(result); err != nil {
//	    return err
//	}
package output
