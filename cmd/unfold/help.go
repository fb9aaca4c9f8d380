// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(binFilesGuide)
	app.Add(eventFilesGuide)
	app.Add(methodsGuide)
	app.Add(paramFilesGuide)
	app.Add(projectsGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
Unfold requires several files to read and process the simulated and measured
events. To reduce the burden of keeping track of many files, a single project
file is used to hold the reference of all files required in the analysis. This
guide explains the structure of the file, but most of the time, the best and
most secure way to edit or view this file is by using unfold commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# unfold project files
	dataset	path
	bins	bins.tab
	mc	mc-events.tab
	data	data-events.tab
	param	param.tab

The valid file types are:

- Bin definitions. Defined by the dataset keyword "bins". This file contains
  the edges of the bins of each dimension. The recommended way to add a bin
  file is by using the command 'unfold bins'.
- Simulated events. Defined by the dataset keyword "mc". This file contains
  the Monte Carlo events used to build the response of the detector. The
  command 'unfold sim' can be used to create toy simulated events.
- Measured events. Defined by the dataset keyword "data". This file contains
  the events to be corrected.
- Reference events. Defined by the dataset keyword "reference". This file
  contains simulated events used as the reference in a Monte Carlo cross
  check ('unfold crosscheck').
- Correction parameters. Defined by the dataset keyword "param". The
  recommended way to add a parameter file is by using the command
  'unfold param'. If it is not defined, the default parameters are used.
- Output prefix. Defined by the dataset keyword "output". It is the prefix of
  the files written by 'unfold correct'.
	`,
}

var binFilesGuide = &command.Command{
	Usage: "bin-files",
	Short: "about bin definition files",
	Long: `
Each dimension of a distribution is divided into regular bins. Each dimension
also has an underflow bin (for values smaller than the first edge) and an
overflow bin (for values equal or greater than the last edge). Bins are
indexed with a flat index, in which the first dimension is the least
significant.

Bins are defined in a tab-delimited file. Bins with the same width are
defined with the following columns:

	- dim   the dimension (starting from 0)
	- min   the lower edge of the first bin
	- max   the upper edge of the last bin
	- bins  the number of bins

Here is an example file:

	# uniform bins
	dim	min	max	bins
	0	0	10	10
	1	-2.5	2.5	5

Bins with arbitrary widths are defined with the following columns:

	- dim   the dimension (starting from 0)
	- edge  an edge of the dimension

Edges must be given in increasing order. Here is an example file:

	# custom bins
	dim	edge
	0	0
	0	1
	0	3
	0	7
	0	15

In an unfold project, the file that contains the bins is indicated with the
"bins" keyword.
	`,
}

var eventFilesGuide = &command.Command{
	Usage: "event-files",
	Short: "about event files",
	Long: `
Simulated and measured events are stored in tab-delimited files with the
following columns:

	- kind    the kind of the event, one of:
	          "pair", a simulated event that was reconstructed,
	          "miss", a simulated event that was not reconstructed,
	          "fake", a reconstructed event without a true cause,
	          "data", a measured event.
	- truth   the true values of the event, separated by commas.
	- reco    the reconstructed values of the event, separated by commas.
	- weight  the weight of the event.

Optionally, the file can contain the columns:

	- recoweight  the weight of the reconstructed value of a pair. By
	              default, it is the same as the weight.
	- prior       if false, the simulated event is only used to build the
	              response of the detector, and not in the prior. By
	              default, it is true.

Here is an example file:

	kind	truth	reco	weight
	pair	1.5,0.2	1.7,0.3	1
	miss	2.5,0.1		1
	fake		6.2,0.8	1
	data		4.4,0.5	1
	`,
}

var paramFilesGuide = &command.Command{
	Usage: "param-files",
	Short: "about correction parameter files",
	Long: `
The parameters of a correction are stored in a tab-delimited file with the
following columns:

	- parameter  the name of the parameter
	- value      the value of the parameter

The valid parameters are:

	- method      the correction method (see 'unfold help methods').
	- iterations  the maximum number of iterations.
	- errors      the error mode: 0 without errors, 1 only variances,
	              2 the full covariance matrix.
	- smooth      if true, the prior of each iteration is smoothed.
	- cpu         the number of processors used in the covariance, 0 for
	              all processors.
	- bintol      the maximum relative deviation of a bin, used in the
	              delinearisation check.
	- avgtol      the maximum average relative deviation, used in the
	              delinearisation check.

Here is an example file:

	# unfold correction parameters
	parameter	value
	method	bayes
	iterations	4
	errors	2
	smooth	true
	cpu	0
	bintol	0.01
	avgtol	0.005

In an unfold project, the file that contains the parameters is indicated with
the "param" keyword.
	`,
}

var methodsGuide = &command.Command{
	Usage: "methods",
	Short: "about correction methods",
	Long: `
Unfold implements the following correction methods:

	- bayes     the iterative Bayesian unfolding of G. D'Agostini (1995)
	            Nucl. Instrum. Meth. A362: 487-498. The simulated truth is
	            used as the first prior, and each iteration uses the result
	            of the previous iteration as the prior.
	- binbybin  each bin is multiplied by the ratio between the simulated
	            truth and the simulated reconstructed values.
	- folding   the response of the detector is applied to the data. It is
	            used to compare a true distribution with a measured one.
	- none      the data is returned without any correction.
	`,
}
