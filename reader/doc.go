// Package reader loads filterx input.
//
// Every file is opened through Open, which reads "-" as standard input and
// transparently decompresses gzip and zstd streams.
//
// Tabular formats load fully into a frame:
//   - delimited text (LoadCSV), with separator detection and type inference
//   - SAM, VCF and GFF/GTF presets (LoadSAM, LoadVCF, LoadGXF)
//   - parquet files or glob patterns (LoadParquet)
//
// FASTA and FASTQ are decoded incrementally by FastaReader and FastqReader,
// which hand out records in chunks through Pull:
//
//	r, err := reader.Open("reads.fq.gz")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	fq, err := reader.NewFastqReader(r, reader.FastqOptions{})
//	if err != nil {
//	    return err
//	}
//	for {
//	    chunk, err := fq.Pull(4096)
//	    if err != nil {
//	        return err
//	    }
//	    if chunk.Height() == 0 {
//	        break
//	    }
//	    // ...
//	}
package reader
