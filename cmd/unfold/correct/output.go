// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package correct

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/unfold/correction"
	"github.com/js-arias/unfold/distribution"
	"gonum.org/v1/gonum/mat"
)

// WriteFile creates a file
// and writes its content with fn.
func writeFile(name string, fn func(bw *bufio.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func newTSV(bw *bufio.Writer, header []string) (*csv.Writer, error) {
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true
	if err := tsv.Write(header); err != nil {
		return nil, fmt.Errorf("while writing header: %v", err)
	}
	return tsv, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinInts(vs []int) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}

func joinFloats(vs []float64) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = formatFloat(v)
	}
	return strings.Join(s, ",")
}

func writeCorrected(name, prj string, corr correction.Corrector) error {
	data, err := corr.Uncorrected()
	if err != nil {
		return err
	}
	truth, err := corr.Truth()
	if err != nil {
		return err
	}
	corrected, err := corr.Corrected()
	if err != nil {
		return err
	}
	variances, err := corr.Variances()
	if err != nil && !errors.Is(err, correction.ErrNoVariances) {
		return err
	}

	return writeFile(name, func(bw *bufio.Writer) error {
		fmt.Fprintf(bw, "# corrected distribution of project %q\n", prj)
		fmt.Fprintf(bw, "# method: %s, prior: %s, id: %s\n", corr.Name(), corr.Label(), corr.ID())
		fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

		header := []string{"bin", "index", "center", "data", "truth", "corrected"}
		if variances != nil {
			header = append(header, "variance")
		}
		tsv, err := newTSV(bw, header)
		if err != nil {
			return err
		}

		ix := corrected.Indexer()
		dv, tv, cv := data.Values(), truth.Values(), corrected.Values()
		for i := range cv {
			bin, index, center := "bad", "", ""
			if i < corrected.Len() {
				nd, err := ix.Split(i)
				if err != nil {
					return err
				}
				c, err := ix.CentralValues(nd)
				if err != nil {
					return err
				}
				bin, index, center = strconv.Itoa(i), joinInts(nd), joinFloats(c)
			}
			row := []string{
				bin,
				index,
				center,
				formatFloat(dv[i]),
				formatFloat(tv[i]),
				formatFloat(cv[i]),
			}
			if variances != nil {
				v := ""
				if i < len(variances) {
					v = formatFloat(variances[i])
				}
				row = append(row, v)
			}
			if err := tsv.Write(row); err != nil {
				return fmt.Errorf("while writing data: %v", err)
			}
		}

		tsv.Flush()
		if err := tsv.Error(); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
		return nil
	})
}

// WriteCovariance writes the non-zero elements
// of the upper triangle
// of a covariance matrix.
func writeCovariance(name, prj string, corr correction.Corrector, cov mat.Symmetric) error {
	return writeFile(name, func(bw *bufio.Writer) error {
		fmt.Fprintf(bw, "# covariance of the corrected distribution of project %q\n", prj)
		fmt.Fprintf(bw, "# method: %s, prior: %s, id: %s\n", corr.Name(), corr.Label(), corr.ID())
		fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

		tsv, err := newTSV(bw, []string{"bin", "bin2", "covariance"})
		if err != nil {
			return err
		}

		n := cov.SymmetricDim()
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := cov.At(i, j)
				if v == 0 {
					continue
				}
				row := []string{
					strconv.Itoa(i),
					strconv.Itoa(j),
					formatFloat(v),
				}
				if err := tsv.Write(row); err != nil {
					return fmt.Errorf("while writing data: %v", err)
				}
			}
		}

		tsv.Flush()
		if err := tsv.Error(); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
		return nil
	})
}

func writeProfile(name, prj string, axis int, d *distribution.Distribution) error {
	return writeFile(name, func(bw *bufio.Writer) error {
		fmt.Fprintf(bw, "# corrected distribution of project %q delinearised along dimension %d\n", prj, axis)
		fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))

		tsv, err := newTSV(bw, []string{"bin", "center", "mean"})
		if err != nil {
			return err
		}

		ix := d.Indexer()
		values := d.Values()
		for i := 0; i < d.Len(); i++ {
			c, err := ix.CentralValues([]int{i})
			if err != nil {
				return err
			}
			row := []string{
				strconv.Itoa(i),
				formatFloat(c[0]),
				formatFloat(values[i]),
			}
			if err := tsv.Write(row); err != nil {
				return fmt.Errorf("while writing data: %v", err)
			}
		}

		tsv.Flush()
		if err := tsv.Error(); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
		return nil
	})
}

type yodaMarshaler interface {
	MarshalYODA() ([]byte, error)
}

func writeYODA(name string, corr correction.Corrector) error {
	var hs []yodaMarshaler
	for _, fn := range []func() (yodaMarshaler, error){
		func() (yodaMarshaler, error) { return corr.UncorrectedHistogram() },
		func() (yodaMarshaler, error) { return corr.TruthHistogram() },
		func() (yodaMarshaler, error) { return corr.CorrectedHistogram() },
		func() (yodaMarshaler, error) { return corr.SmearingHistogram() },
	} {
		h, err := fn()
		if err != nil {
			return err
		}
		hs = append(hs, h)
	}

	return writeFile(name, func(bw *bufio.Writer) error {
		for _, h := range hs {
			b, err := h.MarshalYODA()
			if err != nil {
				return err
			}
			if _, err := bw.Write(b); err != nil {
				return err
			}
		}
		return nil
	})
}
